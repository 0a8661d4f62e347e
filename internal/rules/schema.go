package rules

// Raw HCL document shapes. gohcl decoding is strict, so unknown blocks and
// attributes fail the parse, which is the schema-rejection behaviour we want.

type documentDoc struct {
	Variants []variantDoc `hcl:"variant,block"`
}

type variantDoc struct {
	Key               string          `hcl:"key,label"`
	SchemaVersion     int             `hcl:"schema_version"`
	Name              string          `hcl:"name,optional"`
	Players           *playersDoc     `hcl:"players,block"`
	Deck              *deckDoc        `hcl:"deck,block"`
	ForcedBets        []forcedBetsDoc `hcl:"forced_bets,block"`
	BettingStructures []string        `hcl:"betting_structures"`
	Order             *orderDoc       `hcl:"betting_order,block"`
	Wilds             []wildDoc       `hcl:"wild,block"`
	Steps             []stepDoc       `hcl:"step,block"`
	Showdown          *showdownDoc    `hcl:"showdown_rule,block"`
}

type playersDoc struct {
	Min int `hcl:"min"`
	Max int `hcl:"max"`
}

type deckDoc struct {
	Type   string `hcl:"type"`
	Cards  int    `hcl:"cards,optional"`
	Jokers int    `hcl:"jokers,optional"`
}

type forcedBetsDoc struct {
	Style       string        `hcl:"style"`
	Rule        string        `hcl:"rule,optional"`
	BringInEval string        `hcl:"bring_in_eval,optional"`
	When        *conditionDoc `hcl:"when,block"`
}

type orderDoc struct {
	Initial    string             `hcl:"initial"`
	Subsequent string             `hcl:"subsequent"`
	Overrides  []orderOverrideDoc `hcl:"override,block"`
}

type orderOverrideDoc struct {
	Initial    string        `hcl:"initial,optional"`
	Subsequent string        `hcl:"subsequent,optional"`
	When       *conditionDoc `hcl:"when,block"`
}

type wildDoc struct {
	Kind  string `hcl:"kind,label"`
	Rank  string `hcl:"rank,optional"`
	Role  string `hcl:"role,optional"`
	Scope string `hcl:"scope,optional"`
}

// conditionDoc is the schema for conditionals on steps, deals, forced bets
// and showdown configurations. Exactly one matcher family should be set.
type conditionDoc struct {
	Choice   string `hcl:"choice,optional"`
	Equals   string `hcl:"equals,optional"`
	Subset   string `hcl:"subset,optional"`
	Count    *int   `hcl:"count,optional"`
	LastCard string `hcl:"last_card_color,optional"`
	HandSize *int   `hcl:"hand_size,optional"`
	Exposed  *bool  `hcl:"exposed,optional"`
}

type stepDoc struct {
	Name      string            `hcl:"name,label"`
	When      *conditionDoc     `hcl:"when,block"`
	Bets      []betDoc          `hcl:"bet,block"`
	Deals     []dealDoc         `hcl:"deal,block"`
	Discards  []discardDoc      `hcl:"discard,block"`
	Draws     []drawDoc         `hcl:"draw,block"`
	Removes   []removeDoc       `hcl:"remove,block"`
	Exposes   []exposeDoc       `hcl:"expose,block"`
	Passes    []passDoc         `hcl:"pass,block"`
	Separates []separateDoc     `hcl:"separate,block"`
	Declares  []declareDoc      `hcl:"declare,block"`
	Chooses   []chooseDoc       `hcl:"choose,block"`
	Rolls     []rollDieDoc      `hcl:"roll_die,block"`
	Showdowns []showdownStepDoc `hcl:"showdown,block"`
}

type betDoc struct {
	Type string `hcl:"type"`
}

type dealDoc struct {
	Location  string         `hcl:"location"`
	Number    int            `hcl:"number"`
	Subset    string         `hcl:"subset,optional"`
	State     string         `hcl:"state,optional"`
	StateWhen *dealStateCond `hcl:"state_when,block"`
}

type dealStateCond struct {
	When *conditionDoc `hcl:"when,block"`
	Then string        `hcl:"then"`
	Else string        `hcl:"else"`
}

type discardDoc struct {
	Number       int    `hcl:"number"`
	Min          int    `hcl:"min,optional"`
	Subset       string `hcl:"subset,optional"`
	EntireSubset bool   `hcl:"entire_subset,optional"`
	ToCommunity  string `hcl:"to_community,optional"`
	OncePerStep  bool   `hcl:"once_per_step,optional"`
	Rule         string `hcl:"rule,optional"`
}

type drawDoc struct {
	Number     int    `hcl:"number"`
	Subset     string `hcl:"subset,optional"`
	RelativeTo string `hcl:"relative_to,optional"`
	Offset     int    `hcl:"offset,optional"`
}

type removeDoc struct {
	Location string `hcl:"location,optional"`
	Subset   string `hcl:"subset,optional"`
	Number   int    `hcl:"number"`
}

type exposeDoc struct {
	Number    int    `hcl:"number"`
	Subset    string `hcl:"subset,optional"`
	Immediate bool   `hcl:"immediate,optional"`
}

type passDoc struct {
	Number    int    `hcl:"number"`
	Direction string `hcl:"direction"`
	Subset    string `hcl:"subset,optional"`
}

type separateDoc struct {
	Targets []separateTargetDoc `hcl:"subset,block"`
}

type separateTargetDoc struct {
	Name      string `hcl:"name,label"`
	Size      int    `hcl:"size"`
	MinFaceUp int    `hcl:"min_face_up,optional"`
}

type declareDoc struct {
	Options    []string `hcl:"options"`
	Sequential bool     `hcl:"sequential,optional"`
}

type chooseDoc struct {
	Name     string   `hcl:"name,label"`
	Position string   `hcl:"position"`
	Values   []string `hcl:"values"`
}

type rollDieDoc struct {
	Sides  int    `hcl:"sides,optional"`
	Subset string `hcl:"subset,optional"`
}

type showdownStepDoc struct{}

type showdownDoc struct {
	DeclarationMode string            `hcl:"declaration_mode,optional"`
	Classification  string            `hcl:"classification,optional"`
	BestHands       []bestHandDoc     `hcl:"best_hand,block"`
	Default         *defaultActionDoc `hcl:"default_action,block"`
}

type bestHandDoc struct {
	Name       string         `hcl:"name,label"`
	Evaluation string         `hcl:"evaluation"`
	HandSize   int            `hcl:"hand_size,optional"`
	HoleMin    *int           `hcl:"hole_min,optional"`
	HoleMax    *int           `hcl:"hole_max,optional"`
	Community  string         `hcl:"community,optional"`
	Qualifier  string         `hcl:"qualifier,optional"`
	UnusedFrom string         `hcl:"unused_from,optional"`
	Subsets    []subsetUseDoc `hcl:"use_subset,block"`
	When       *conditionDoc  `hcl:"when,block"`
}

type subsetUseDoc struct {
	Name string `hcl:"name,label"`
	Min  int    `hcl:"min"`
	Max  int    `hcl:"max"`
}

type defaultActionDoc struct {
	Action     string `hcl:"action"`
	Evaluation string `hcl:"evaluation,optional"`
}
