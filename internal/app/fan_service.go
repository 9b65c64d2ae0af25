package app

import (
	"context"
	"fmt"
	"time"

	"fanclub-bot/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts where in-progress applications live.
type SessionRepository interface {
	// Put stores app under its user, replacing any existing entry.
	Put(app *domain.FanApplication) (replaced bool)
	Get(userID string) (*domain.FanApplication, bool)
	// Update runs fn atomically against the user's application and deletes it when fn returns remove.
	// It returns domain.ErrApplicationNotFound when the user has no application.
	Update(userID string, fn func(app *domain.FanApplication) (remove bool, err error)) error
	Delete(userID string)
}

// CooldownRepository tracks users who must wait before applying again.
type CooldownRepository interface {
	StartCooldown(ctx context.Context, userID string, d time.Duration) error
	Remaining(ctx context.Context, userID string) (time.Duration, error)
}

// RoleGranter adds a role to a guild member.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID, roleID string) error
}

// Settings are the quiz rules, fixed for the lifetime of the process.
type Settings struct {
	QuestionsPerApplication int
	TimeLimit               time.Duration
	RewardRoleID            string
	RetryCooldown           time.Duration
	Shuffle                 ShufflePolicy
}

// StartResult describes a started application, or why none was started.
type StartResult struct {
	ApplicationID string
	Prompt        domain.Prompt
	Replaced      bool
	// RetryIn is positive when the user is cooling down; no application was created then.
	RetryIn time.Duration
}

// AnswerResult describes what an answer did to the application.
type AnswerResult struct {
	ApplicationID string
	Outcome       domain.Outcome
	Prompt        domain.Prompt // set for OutcomeNextQuestion
	RoleGranted   bool
}

// FanService runs the fan application quiz.
type FanService struct {
	bank      *QuestionBank
	sessions  SessionRepository
	cooldowns CooldownRepository
	roles     RoleGranter
	settings  Settings
	now       func() time.Time
	rnd       *lockedRand
}

func NewFanService(bank *QuestionBank, sessions SessionRepository, cooldowns CooldownRepository, roles RoleGranter, settings Settings) *FanService {
	if settings.Shuffle == "" {
		settings.Shuffle = ShuffleExactlyFour
	}
	return &FanService{
		bank:      bank,
		sessions:  sessions,
		cooldowns: cooldowns,
		roles:     roles,
		settings:  settings,
		now:       time.Now,
		rnd:       newLockedRand(time.Now().UnixNano()),
	}
}

// WithClock swaps the time source; tests use it for deterministic deadlines.
func (s *FanService) WithClock(now func() time.Time) *FanService {
	s.now = now
	return s
}

// Settings returns the rules the service was built with.
func (s *FanService) Settings() Settings {
	return s.settings
}

// Start begins a new application for userID and returns its first question.
func (s *FanService) Start(ctx context.Context, userID string) (StartResult, error) {
	if s.cooldowns != nil && s.settings.RetryCooldown > 0 {
		remaining, err := s.cooldowns.Remaining(ctx, userID)
		if err != nil {
			return StartResult{}, fmt.Errorf("check cooldown: %w", err)
		}
		if remaining > 0 {
			return StartResult{RetryIn: remaining}, nil
		}
	}

	questions, err := s.bank.Sample(s.settings.QuestionsPerApplication)
	if err != nil {
		return StartResult{}, err
	}
	app := &domain.FanApplication{
		ID:        uuid.NewString(),
		UserID:    userID,
		Questions: questions,
		Current:   0,
		StartedAt: s.now(),
	}
	// The prompt is built before the application is shared with the store.
	prompt := s.prompt(app)
	replaced := s.sessions.Put(app)

	return StartResult{
		ApplicationID: app.ID,
		Prompt:        prompt,
		Replaced:      replaced,
	}, nil
}

// Answer evaluates the chosen answer index (as stored in the button, not its display position).
func (s *FanService) Answer(ctx context.Context, member domain.Member, chosen int) (AnswerResult, error) {
	now := s.now()
	var res AnswerResult

	err := s.sessions.Update(member.UserID, func(app *domain.FanApplication) (bool, error) {
		q := app.CurrentQuestion()
		if chosen < 0 || chosen >= len(q.Answers) {
			return false, fmt.Errorf("%w: %d for %d answers", domain.ErrAnswerOutOfRange, chosen, len(q.Answers))
		}
		res.ApplicationID = app.ID

		if chosen != q.CorrectAnswer {
			res.Outcome = domain.OutcomeFailedWrongAnswer
			return true, nil
		}
		if !app.OnLastQuestion() {
			app.Current++
			res.Outcome = domain.OutcomeNextQuestion
			res.Prompt = s.prompt(app)
			return false, nil
		}
		if now.After(app.StartedAt.Add(s.settings.TimeLimit)) {
			res.Outcome = domain.OutcomeFailedTimeout
		} else {
			res.Outcome = domain.OutcomePassed
		}
		return true, nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	switch res.Outcome {
	case domain.OutcomePassed:
		if member.HasRole(s.settings.RewardRoleID) {
			break
		}
		if err := s.roles.GrantRole(ctx, member.UserID, s.settings.RewardRoleID); err != nil {
			return res, fmt.Errorf("grant reward role: %w", err)
		}
		res.RoleGranted = true
	case domain.OutcomeFailedWrongAnswer, domain.OutcomeFailedTimeout:
		if s.cooldowns == nil || s.settings.RetryCooldown <= 0 {
			break
		}
		if err := s.cooldowns.StartCooldown(ctx, member.UserID, s.settings.RetryCooldown); err != nil {
			return res, fmt.Errorf("start cooldown: %w", err)
		}
	}
	return res, nil
}

func (s *FanService) prompt(app *domain.FanApplication) domain.Prompt {
	q := app.CurrentQuestion()
	return domain.Prompt{
		Number:  app.Current + 1,
		Total:   len(app.Questions),
		Text:    q.Text,
		Choices: s.settings.Shuffle.choices(q, s.rnd),
	}
}
