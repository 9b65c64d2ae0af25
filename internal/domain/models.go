package domain

import (
	"fmt"
	"slices"
	"time"
)

// Question is one multiple-choice entry of the question bank.
type Question struct {
	Text          string   `yaml:"question" json:"question"`
	Answers       []string `yaml:"answers" json:"answers"`
	CorrectAnswer int      `yaml:"correct_answer" json:"correct_answer"`
}

// MinAnswers and MaxAnswers bound the choices of a question; Discord fits
// at most five buttons in a row and the answer identifier is a single digit.
const (
	MinAnswers = 2
	MaxAnswers = 4
)

// Validate checks the answer count and the correct answer index.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: empty question text", ErrInvalidQuestion)
	}
	if len(q.Answers) < MinAnswers || len(q.Answers) > MaxAnswers {
		return fmt.Errorf("%w: %q has %d answers, want %d-%d", ErrInvalidQuestion, q.Text, len(q.Answers), MinAnswers, MaxAnswers)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Answers) {
		return fmt.Errorf("%w: %q correct_answer %d out of range", ErrInvalidQuestion, q.Text, q.CorrectAnswer)
	}
	return nil
}

// Member is the guild member behind an interaction.
type Member struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the member already holds roleID.
func (m Member) HasRole(roleID string) bool {
	return slices.Contains(m.Roles, roleID)
}

// FanApplication is one user's in-progress attempt at the quiz.
type FanApplication struct {
	ID        string
	UserID    string
	Questions []Question
	Current   int
	StartedAt time.Time
}

// CurrentQuestion returns the question the user is expected to answer.
func (a *FanApplication) CurrentQuestion() Question {
	return a.Questions[a.Current]
}

// OnLastQuestion reports whether the current question is the final one.
func (a *FanApplication) OnLastQuestion() bool {
	return a.Current == len(a.Questions)-1
}

// Outcome is the state an application lands in after an answer.
type Outcome int

const (
	OutcomeNextQuestion Outcome = iota
	OutcomePassed
	OutcomeFailedWrongAnswer
	OutcomeFailedTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNextQuestion:
		return "awaiting_answer"
	case OutcomePassed:
		return "passed"
	case OutcomeFailedWrongAnswer:
		return "failed_wrong_answer"
	case OutcomeFailedTimeout:
		return "failed_timeout"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome ends the application.
func (o Outcome) Terminal() bool {
	return o != OutcomeNextQuestion
}

// Choice is an answer as displayed; Index is its position in Question.Answers.
type Choice struct {
	Index int
	Label string
}

// Prompt is a question ready to be rendered, with choices in display order.
type Prompt struct {
	Number  int // 1-based
	Total   int
	Text    string
	Choices []Choice
}
