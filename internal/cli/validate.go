package cli

import (
	"fmt"

	"fanclub-bot/internal/app"
	"fanclub-bot/internal/config"
	"fanclub-bot/internal/logger"
	"github.com/spf13/cobra"
)

// NewValidateCmd checks the config and question bank without connecting to Discord
// or changing the database.
func NewValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file and question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateOffline(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

			bank, err := loadQuestionBank(cmd.Context(), cfg, log, false)
			if err != nil {
				return err
			}
			settings, err := quizSettings(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok: "+questionSummary(bank, settings))
			return nil
		},
	}
}

func questionSummary(bank *app.QuestionBank, settings app.Settings) string {
	return fmt.Sprintf("%d questions in bank, %d per application, %v time limit, shuffle %s",
		bank.Len(), settings.QuestionsPerApplication, settings.TimeLimit, settings.Shuffle)
}
