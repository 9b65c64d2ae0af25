package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fanclub-bot/internal/app"
	"fanclub-bot/internal/config"
	"fanclub-bot/internal/infra/memory"
	pgloader "fanclub-bot/internal/infra/postgres"
	rediscooldown "fanclub-bot/internal/infra/redis"
	"fanclub-bot/internal/logger"
	discordtransport "fanclub-bot/internal/transport/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand that connects the bot to Discord.
func NewStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Connect to Discord and serve fan applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath)
		},
	}
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bank, err := loadQuestionBank(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	settings, err := quizSettings(cfg)
	if err != nil {
		return err
	}

	var cooldowns app.CooldownRepository = memory.NewCooldownStore()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cooldowns = rediscooldown.NewCooldownStore(redisClient)
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	service := app.NewFanService(bank, memory.NewSessionStore(), cooldowns,
		discordtransport.NewRoleGranter(session, cfg.Discord.GuildID), settings)
	handler := discordtransport.NewHandler(session, service, discordtransport.Options{
		GuildID:      cfg.Discord.GuildID,
		SetupCommand: cfg.Discord.SetupCommand,
		RewardRoleID: cfg.Discord.RewardRoleID,
		Messages:     cfg.Messages,
	}, log)
	session.AddHandler(handler.OnReady)
	session.AddHandler(handler.OnInteractionCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer session.Close()
	log.Info().
		Int("questions", bank.Len()).
		Int("per_application", settings.QuestionsPerApplication).
		Dur("time_limit", settings.TimeLimit).
		Msg("fan application bot running")

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Health.Addr != "" {
		server := newHealthServer(cfg.Health.Addr)
		g.Go(func() error {
			log.Info().Str("addr", cfg.Health.Addr).Msg("health endpoint listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return nil
	})
	return g.Wait()
}

// loadQuestionBank reads the bank from Postgres when configured, otherwise from the config file.
// Migrations run first only when migrate is set.
func loadQuestionBank(ctx context.Context, cfg config.Config, log zerolog.Logger, migrate bool) (*app.QuestionBank, error) {
	questions := cfg.Questions
	if cfg.Postgres.URL != "" {
		if migrate {
			if err := runMigrations(ctx, cfg, log); err != nil {
				return nil, err
			}
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		loaded, err := pgloader.NewQuestionLoader(pool).LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		questions = loaded
	}

	bank, err := app.NewQuestionBank(questions, cfg.Quiz.QuestionsPerApplication)
	if err != nil {
		return nil, fmt.Errorf("question bank: %w", err)
	}
	return bank, nil
}

func quizSettings(cfg config.Config) (app.Settings, error) {
	shuffle, err := app.ParseShufflePolicy(cfg.Quiz.ShuffleAnswers)
	if err != nil {
		return app.Settings{}, fmt.Errorf("quiz.shuffle_answers: %w", err)
	}
	return app.Settings{
		QuestionsPerApplication: cfg.Quiz.QuestionsPerApplication,
		TimeLimit:               cfg.TimeLimit(),
		RewardRoleID:            cfg.Discord.RewardRoleID,
		RetryCooldown:           config.DurationOr(cfg.Quiz.RetryCooldown, 0),
		Shuffle:                 shuffle,
	}, nil
}

func newHealthServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}
