package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"fanclub-bot/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable holding the bot token.
const TokenEnv = "DISCORD_TOKEN"

type Config struct {
	Discord struct {
		Token        string `yaml:"token"`
		GuildID      string `yaml:"guild_id"`
		SetupCommand string `yaml:"setup_command"`
		RewardRoleID string `yaml:"reward_role_id"`
	} `yaml:"discord"`
	Quiz struct {
		QuestionsPerApplication int    `yaml:"questions_per_application"`
		TimeLimitMinutes        int    `yaml:"time_limit_minutes"`
		RetryCooldown           string `yaml:"retry_cooldown"`
		ShuffleAnswers          string `yaml:"shuffle_answers"`
	} `yaml:"quiz"`
	Questions []domain.Question `yaml:"questions"`
	Postgres  struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`
	Messages Messages `yaml:"messages"`
}

// Load reads YAML config from path, fills defaults and takes the token from
// DISCORD_TOKEN (a .env file is honoured) when the file does not set it.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if token := os.Getenv(TokenEnv); token != "" && cfg.Discord.Token == "" {
		cfg.Discord.Token = token
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Discord.SetupCommand == "" {
		c.Discord.SetupCommand = "setupfanapplicationchannel"
	}
	if c.Quiz.QuestionsPerApplication == 0 {
		c.Quiz.QuestionsPerApplication = 5
	}
	if c.Quiz.TimeLimitMinutes == 0 {
		c.Quiz.TimeLimitMinutes = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "pretty"
	}
	c.Messages = c.Messages.withDefaults()
}

// Validate reports every problem at once. Questions are only checked here
// when they come from the file; a Postgres bank is checked after loading.
func (c Config) Validate() error {
	return c.validate(true)
}

// ValidateOffline is Validate without the Discord token, for checks that never connect.
func (c Config) ValidateOffline() error {
	return c.validate(false)
}

func (c Config) validate(requireToken bool) error {
	var errs []error
	if requireToken && c.Discord.Token == "" {
		errs = append(errs, fmt.Errorf("discord token missing: set %s or discord.token", TokenEnv))
	}
	if c.Discord.GuildID == "" {
		errs = append(errs, errors.New("discord.guild_id is required"))
	}
	if c.Discord.RewardRoleID == "" {
		errs = append(errs, errors.New("discord.reward_role_id is required"))
	}
	if c.Quiz.QuestionsPerApplication < 1 {
		errs = append(errs, errors.New("quiz.questions_per_application must be positive"))
	}
	if c.Quiz.TimeLimitMinutes < 1 {
		errs = append(errs, errors.New("quiz.time_limit_minutes must be positive"))
	}
	if _, err := time.ParseDuration(orZero(c.Quiz.RetryCooldown)); err != nil {
		errs = append(errs, fmt.Errorf("quiz.retry_cooldown: %w", err))
	}
	if c.Postgres.URL == "" {
		for i, q := range c.Questions {
			if err := q.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
			}
		}
		if len(c.Questions) < c.Quiz.QuestionsPerApplication {
			errs = append(errs, fmt.Errorf("%w: questions_per_application is %d, bank has %d",
				domain.ErrNotEnoughQuestions, c.Quiz.QuestionsPerApplication, len(c.Questions)))
		}
	}
	return errors.Join(errs...)
}

// TimeLimit is the quiz deadline measured from the start button click.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.Quiz.TimeLimitMinutes) * time.Minute
}

// DurationOr parses a duration string or returns the fallback if empty or invalid.
func DurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func orZero(raw string) string {
	if raw == "" {
		return "0s"
	}
	return raw
}
