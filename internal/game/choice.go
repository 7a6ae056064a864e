package game

// Choice is one of the three moves a player can throw.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Choices lists the full move set in a stable order.
var Choices = []Choice{Rock, Paper, Scissors}

// beats maps each choice to the choice it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// counters maps each choice to the choice that defeats it.
var counters = map[Choice]Choice{
	Rock:     Paper,
	Paper:    Scissors,
	Scissors: Rock,
}

// Outcome is the result of a round seen from no particular side.
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeFirst
	OutcomeSecond
)

// DetermineWinner resolves two simultaneous choices. First/second follow
// player slot order: a is players[0], b is players[1].
func DetermineWinner(a, b Choice) Outcome {
	if a == b {
		return OutcomeTie
	}
	if beats[a] == b {
		return OutcomeFirst
	}
	return OutcomeSecond
}

// ParseChoice validates wire input against the move set.
func ParseChoice(s string) (Choice, bool) {
	c := Choice(s)
	_, ok := beats[c]
	return c, ok
}
