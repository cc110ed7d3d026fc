package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shiporsink/change/internal/models"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/internal/services/insights"
	"github.com/shiporsink/change/internal/utils"
	"github.com/shiporsink/change/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	contextUser string
	contextJSON bool

	tokenSubject string
	tokenEmail   string
	tokenTTL     time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("Migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default prompts and settings that do not exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		models.ApplyConfigDefaults(cfg)
		if err := models.SeedDefaultData(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info().Msg("Seed complete")
		return nil
	},
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the cross-project context of a user",
	Long: `Print the context the coach receives for a user: stakeholders across
all of the user's own projects, groups, and detected patterns.

Examples:
  changectl context --user 0b9a8c4e-6b0f-4d3a-9a57-1f1d2c3b4a5e
  changectl context --user 0b9a8c4e-6b0f-4d3a-9a57-1f1d2c3b4a5e --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(contextUser); err != nil {
			return fmt.Errorf("--user must be a user id (uuid): %w", err)
		}
		_, db, err := openDB()
		if err != nil {
			return err
		}
		svc := services.NewContextService(db)
		if contextJSON {
			ctx, err := svc.Build(contextUser)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ctx)
		}
		prompt, err := svc.Prompt(contextUser)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
		return err
	},
}

var parseStartersCmd = &cobra.Command{
	Use:   "parse-starters",
	Short: "Parse LLM output from stdin into conversation starters",
	Long: `Read a raw LLM answer from stdin and print the starters extracted from it
as JSON. Useful when tuning the conversation_starters prompt.

Example:
  changectl parse-starters < answer.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), insights.ParseStarters(string(raw)))
	},
}

var devTokenCmd = &cobra.Command{
	Use:   "dev-token",
	Short: "Sign a local access token with the configured secret",
	Long: `Sign an access token the way the hosted auth provider does, using
auth.jwt_secret from the config. Only meant for local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if tokenSubject == "" {
			tokenSubject = uuid.New().String()
		} else if _, err := uuid.Parse(tokenSubject); err != nil {
			return fmt.Errorf("--sub must be a uuid: %w", err)
		}
		utils.SetJWTSecret(cfg.Auth.JWTSecret)
		utils.SetJWTExpectations(cfg.Auth.Issuer, cfg.Auth.Audience)
		tok, err := utils.GenerateToken(tokenSubject, tokenEmail, tokenTTL)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
		return err
	},
}

func init() {
	contextCmd.Flags().StringVar(&contextUser, "user", "", "User id (token subject) (required)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "Print the structured context instead of the prompt text")
	_ = contextCmd.MarkFlagRequired("user")

	devTokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "User id to sign for (default: random)")
	devTokenCmd.Flags().StringVar(&tokenEmail, "email", "dev@example.com", "Email claim")
	devTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
