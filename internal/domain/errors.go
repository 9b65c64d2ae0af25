package domain

import "errors"

var (
	// ErrApplicationNotFound is returned when an answer arrives for a user without an active application.
	ErrApplicationNotFound = errors.New("fan application not found")
	// ErrAnswerOutOfRange indicates an answer index that the current question does not have.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrInvalidQuestion marks malformed question bank entries.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrNotEnoughQuestions is returned when the bank is smaller than the sample size.
	ErrNotEnoughQuestions = errors.New("not enough questions in bank")
	// ErrMalformedCustomID marks a component identifier that looks like ours but cannot be parsed.
	ErrMalformedCustomID = errors.New("malformed component custom id")
	// ErrMissingMember is returned for interactions that carry no guild member.
	ErrMissingMember = errors.New("interaction has no guild member")
)
