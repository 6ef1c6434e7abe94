package pipeline

// State is a position in the run's fixed stage sequence.
type State int

const (
	Initial State = iota
	Built
	CharactersTransformed
	ConflictTransformed
	StoryGenerated
	Validated
	Complete
)

var stateNames = [...]string{
	Initial:               "initial",
	Built:                 "built",
	CharactersTransformed: "characters_transformed",
	ConflictTransformed:   "conflict_transformed",
	StoryGenerated:        "story_generated",
	Validated:             "validated",
	Complete:              "complete",
}

func (s State) String() string {
	if s < Initial || s > Complete {
		return "unknown"
	}
	return stateNames[s]
}

// Next returns the state that follows s. Complete is terminal.
func (s State) Next() (State, bool) {
	if s < Initial || s >= Complete {
		return s, false
	}
	return s + 1, true
}

// Terminal reports whether no further transition exists.
func (s State) Terminal() bool {
	return s == Complete
}
