package discord

import (
	"fmt"
	"strconv"
	"strings"

	"fanclub-bot/internal/domain"
)

// StartButtonID is the custom ID of the button on the application message.
const StartButtonID = "buttonsetupapplication"

const answerPrefix = "answer"

// Kind enumerates the component interactions the bot understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindAnswer
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// ComponentAction is a parsed component custom ID.
type ComponentAction struct {
	Kind        Kind
	AnswerIndex int // KindAnswer only
	Raw         string
}

// ParseCustomID turns a component custom ID into an action. IDs that are not
// ours yield KindUnknown; "answer" followed by anything but one digit is an error.
func ParseCustomID(id string) (ComponentAction, error) {
	action := ComponentAction{Kind: KindUnknown, Raw: id}
	switch {
	case id == StartButtonID:
		action.Kind = KindStart
	case strings.HasPrefix(id, answerPrefix):
		digit := strings.TrimPrefix(id, answerPrefix)
		if len(digit) != 1 {
			return action, fmt.Errorf("%w: %q", domain.ErrMalformedCustomID, id)
		}
		idx, err := strconv.Atoi(digit)
		if err != nil {
			return action, fmt.Errorf("%w: %q", domain.ErrMalformedCustomID, id)
		}
		action.Kind = KindAnswer
		action.AnswerIndex = idx
	}
	return action, nil
}

// AnswerCustomID encodes the original answer index into a button custom ID.
func AnswerCustomID(index int) string {
	return answerPrefix + strconv.Itoa(index)
}
