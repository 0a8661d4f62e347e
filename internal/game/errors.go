package game

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a rejected player action
type ErrorCode string

const (
	CodeNotPlayersTurn       ErrorCode = "not_players_turn"
	CodeInvalidAction        ErrorCode = "invalid_action"
	CodeBelowMinBet          ErrorCode = "below_min_bet"
	CodeBelowMinRaise        ErrorCode = "below_min_raise"
	CodeAboveMaxBet          ErrorCode = "above_max_bet"
	CodeInsufficientChips    ErrorCode = "insufficient_chips"
	CodeUnknownCardSelection ErrorCode = "unknown_card_selection"
	CodeBadSubsetSizes       ErrorCode = "bad_subset_sizes"
	CodeIllegalDeclaration   ErrorCode = "illegal_declaration"
)

// UserError is a recoverable rejection of a player action. Game state is
// unchanged; the caller corrects the payload and retries.
type UserError struct {
	Code    ErrorCode
	Message string
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func userErr(code ErrorCode, format string, args ...any) *UserError {
	return &UserError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsUserError unwraps a UserError if err is one
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// Engine invariant violations. These indicate a bug, not bad input; the hand
// that produced one is unrecoverable.
var ErrEngine = errors.New("engine invariant violated")

// API misuse outside a hand
var (
	ErrHandInProgress   = errors.New("hand in progress")
	ErrHandNotComplete  = errors.New("hand not complete")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrTableFull        = errors.New("table full")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrDuplicatePlayer  = errors.New("player already seated")
)
