package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fanclub-bot/internal/domain"
)

// QuestionBank holds the validated questions an application samples from.
type QuestionBank struct {
	questions []domain.Question
	rnd       *lockedRand
}

// NewQuestionBank validates every question and makes sure sampleSize of them can be drawn.
func NewQuestionBank(questions []domain.Question, sampleSize int) (*QuestionBank, error) {
	var errs []error
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if sampleSize <= 0 || sampleSize > len(questions) {
		return nil, fmt.Errorf("%w: want %d, have %d", domain.ErrNotEnoughQuestions, sampleSize, len(questions))
	}

	owned := make([]domain.Question, len(questions))
	copy(owned, questions)
	return &QuestionBank{
		questions: owned,
		rnd:       newLockedRand(time.Now().UnixNano()),
	}, nil
}

// Len returns the number of questions in the bank.
func (b *QuestionBank) Len() int {
	return len(b.questions)
}

// Sample draws n distinct questions uniformly without replacement, in random order.
func (b *QuestionBank) Sample(n int) ([]domain.Question, error) {
	if n <= 0 || n > len(b.questions) {
		return nil, fmt.Errorf("%w: want %d, have %d", domain.ErrNotEnoughQuestions, n, len(b.questions))
	}
	perm := b.rnd.Perm(len(b.questions))
	out := make([]domain.Question, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, b.questions[idx])
	}
	return out, nil
}

// lockedRand guards a *rand.Rand, which is not safe for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Perm(n)
}
