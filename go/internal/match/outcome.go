package match

// OutcomeKind distinguishes a single winner from a tie.
type OutcomeKind int

const (
	OutcomeWinner OutcomeKind = iota + 1
	OutcomeTie
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWinner:
		return "winner"
	case OutcomeTie:
		return "tie"
	default:
		return "unknown"
	}
}

// ScoreEntry is one participant's submitted score.
type ScoreEntry struct {
	ParticipantID string
	Name          string
	Raw           string
	Value         float64
}

// Outcome is the decided result of a match.
type Outcome struct {
	Kind     OutcomeKind
	WinnerID string
	TiedIDs  []string
	TopScore float64
}

// IsDraw reports whether the outcome is a tie.
func (o Outcome) IsDraw() bool {
	return o.Kind == OutcomeTie
}

// Decide picks the participant with the strictly highest score. When two or more share
// the top score the outcome is a tie between them. Scores are compared exactly.
func Decide(entries []ScoreEntry) Outcome {
	if len(entries) == 0 {
		return Outcome{Kind: OutcomeTie}
	}

	top := entries[0].Value
	for _, e := range entries[1:] {
		if e.Value > top {
			top = e.Value
		}
	}

	var leaders []string
	for _, e := range entries {
		if e.Value == top {
			leaders = append(leaders, e.ParticipantID)
		}
	}

	if len(leaders) == 1 {
		return Outcome{Kind: OutcomeWinner, WinnerID: leaders[0], TopScore: top}
	}
	return Outcome{Kind: OutcomeTie, TiedIDs: leaders, TopScore: top}
}
