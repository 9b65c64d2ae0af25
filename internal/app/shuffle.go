package app

import (
	"fmt"

	"fanclub-bot/internal/domain"
)

// ShufflePolicy decides when answer choices are displayed in random order.
type ShufflePolicy string

const (
	// ShuffleExactlyFour shuffles only four-choice questions and keeps the order of the rest.
	ShuffleExactlyFour ShufflePolicy = "exactly_four"
	ShuffleAlways      ShufflePolicy = "always"
	ShuffleNever       ShufflePolicy = "never"
)

// ParseShufflePolicy maps a config value to a policy; empty means ShuffleExactlyFour.
func ParseShufflePolicy(raw string) (ShufflePolicy, error) {
	switch p := ShufflePolicy(raw); p {
	case "":
		return ShuffleExactlyFour, nil
	case ShuffleExactlyFour, ShuffleAlways, ShuffleNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown shuffle policy %q", raw)
	}
}

func (p ShufflePolicy) applies(choices int) bool {
	switch p {
	case ShuffleAlways:
		return true
	case ShuffleNever:
		return false
	default:
		return choices == 4
	}
}

// choices lists the answers of q in display order, each keeping its original index.
func (p ShufflePolicy) choices(q domain.Question, rnd *lockedRand) []domain.Choice {
	order := make([]int, len(q.Answers))
	if p.applies(len(q.Answers)) {
		order = rnd.Perm(len(q.Answers))
	} else {
		for i := range order {
			order[i] = i
		}
	}
	out := make([]domain.Choice, 0, len(order))
	for _, idx := range order {
		out = append(out, domain.Choice{Index: idx, Label: q.Answers[idx]})
	}
	return out
}
