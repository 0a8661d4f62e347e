package evaluator

// NamedQualifier resolves a qualifier name from a rule document into the
// threshold HandValue fields for the given evaluation type. The threshold is
// the weakest qualifying hand.
func NamedQualifier(name string, t Type) (*Qualifier, bool) {
	switch name {
	case "":
		return nil, true
	case "eight_or_better":
		// worst qualifying low is 8-7-6-5-4
		if t != A5Low {
			return nil, false
		}
		return &Qualifier{
			Rank:        lowRankBand(CatHighCard),
			OrderedRank: invertPackGroups(groupVals([]int{8, 7, 6, 5, 4})),
		}, true
	case "jacks_or_better":
		if !isHighFamily(t) {
			return nil, false
		}
		return &Qualifier{
			Rank:        CatPair,
			OrderedRank: packGroups(groupVals([]int{11, 11, 4, 3, 2})),
		}, true
	}
	return nil, false
}
