package app_test

import (
	"errors"
	"testing"

	"fanclub-bot/internal/app"
	"fanclub-bot/internal/domain"
)

func TestSampleReturnsDistinctQuestions(t *testing.T) {
	questions := sampleBank(10)
	bank, err := app.NewQuestionBank(questions, 5)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}

	for attempt := 0; attempt < 50; attempt++ {
		sample, err := bank.Sample(5)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if len(sample) != 5 {
			t.Fatalf("expected 5 questions, got %d", len(sample))
		}
		seen := map[string]bool{}
		for _, q := range sample {
			if seen[q.Text] {
				t.Fatalf("duplicate question %q in %+v", q.Text, sample)
			}
			seen[q.Text] = true
		}
	}
}

func TestSampleWholeBank(t *testing.T) {
	bank, err := app.NewQuestionBank(sampleBank(4), 4)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	sample, err := bank.Sample(4)
	if err != nil || len(sample) != 4 {
		t.Fatalf("expected whole bank, got %d err %v", len(sample), err)
	}
}

func TestSampleTooManyFails(t *testing.T) {
	if _, err := app.NewQuestionBank(sampleBank(3), 4); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Fatalf("expected not enough questions at construction, got %v", err)
	}

	bank, err := app.NewQuestionBank(sampleBank(3), 3)
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	if _, err := bank.Sample(4); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Fatalf("expected not enough questions from sample, got %v", err)
	}
	for _, n := range []int{0, -1} {
		if _, err := bank.Sample(n); !errors.Is(err, domain.ErrNotEnoughQuestions) {
			t.Fatalf("sample(%d): expected not enough questions, got %v", n, err)
		}
	}
}

func TestNewQuestionBankRejectsInvalidQuestions(t *testing.T) {
	questions := sampleBank(3)
	questions[1].CorrectAnswer = 2 // only two answers
	questions[2].Answers = []string{"a", "b", "c", "d", "e"}

	_, err := app.NewQuestionBank(questions, 1)
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}
}
