package game

import "math/rand"

// Difficulty selects the scripted opponent's strategy.
type Difficulty string

const (
	DifficultyRandom   Difficulty = "random"
	DifficultyAdaptive Difficulty = "adaptive"
	DifficultyHard     Difficulty = "hard"
)

// ParseDifficulty maps wire input to a known tier, defaulting to random.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyAdaptive, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyRandom
	}
}

// AIChoice returns the scripted opponent's move given the human's move
// history. Deterministic for a fixed rng.
func AIChoice(history []Choice, d Difficulty, rng *rand.Rand) Choice {
	switch d {
	case DifficultyAdaptive:
		return adaptiveChoice(history, rng)
	case DifficultyHard:
		return markovChoice(history, rng)
	default:
		return randomChoice(rng)
	}
}

func randomChoice(rng *rand.Rand) Choice {
	return Choices[rng.Intn(len(Choices))]
}

// adaptiveChoice counters the human's most frequent move, breaking ties
// uniformly among the maxima.
func adaptiveChoice(history []Choice, rng *rand.Rand) Choice {
	if len(history) == 0 {
		return randomChoice(rng)
	}
	counts := make(map[Choice]int, len(Choices))
	for _, c := range history {
		counts[c]++
	}
	return counters[pickMax(counts, rng)]
}

// markovChoice predicts the next move from first-order transition counts
// after the human's most recent move, then counters the prediction.
func markovChoice(history []Choice, rng *rand.Rand) Choice {
	if len(history) < 2 {
		return randomChoice(rng)
	}
	last := history[len(history)-1]
	transitions := make(map[Choice]int, len(Choices))
	for i := 0; i < len(history)-1; i++ {
		if history[i] == last {
			transitions[history[i+1]]++
		}
	}
	return counters[pickMax(transitions, rng)]
}

// pickMax returns one of the choices with the highest count, chosen
// uniformly among ties. Choices absent from counts count as zero.
func pickMax(counts map[Choice]int, rng *rand.Rand) Choice {
	max := 0
	for _, c := range Choices {
		if counts[c] > max {
			max = counts[c]
		}
	}
	maxima := make([]Choice, 0, len(Choices))
	for _, c := range Choices {
		if counts[c] == max {
			maxima = append(maxima, c)
		}
	}
	return maxima[rng.Intn(len(maxima))]
}
