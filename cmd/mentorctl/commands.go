package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/hackathon-mentor-api/internal/bootstrap"
	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/internal/repository"
	"github.com/noah-isme/hackathon-mentor-api/internal/service"
	"github.com/noah-isme/hackathon-mentor-api/pkg/cache"
	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
	"github.com/noah-isme/hackathon-mentor-api/pkg/database"
	"github.com/noah-isme/hackathon-mentor-api/pkg/logger"
)

func classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text...>",
		Short: "Print the keyword classification of an idea description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := service.NewKeywordClassifier().Classify(cmd.Context(), strings.Join(args, " "))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tags.Strings(), ","))
			return err
		},
	}
}

func distributeCommand() *cobra.Command {
	var hackathonID string
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Run a mentor distribution for one hackathon and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			defer log.Sync() //nolint:errcheck

			result, err := app.Scheduler.Distribute(cmd.Context(), hackathonID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result.Summary)
		},
	}
	cmd.Flags().StringVar(&hackathonID, "hackathon", "", "hackathon id")
	_ = cmd.MarkFlagRequired("hackathon")
	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, log, err := openContainer(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			defer log.Sync() //nolint:errcheck

			if err := database.Migrate(cmd.Context(), app.DB); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func tokenCommand() *cobra.Command {
	var (
		userID   string
		role     string
		email    string
		mentorID string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development access token with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(nil, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				Issuer:            cfg.JWT.Issuer,
				Audience:          cfg.JWT.Audience,
			})
			token, err := auth.IssueToken(userID, models.UserRole(strings.ToUpper(role)), email, mentorID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "dev-user", "subject user id")
	cmd.Flags().StringVar(&role, "role", string(models.RoleOrganizer), "role claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&mentorID, "mentor", "", "mentor id claim for MENTOR tokens")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func cacheFlushCommand() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "cache-flush",
		Short: "Remove cached classifications and run summaries from redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := service.CachePatterns(scope); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.Redis.Enabled {
				return fmt.Errorf("redis is disabled, set ENABLE_REDIS=true")
			}
			log, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			client, err := cache.NewRedis(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			repo := repository.NewCacheRepository(client, log)
			defer repo.Close() //nolint:errcheck

			patterns, err := service.NewCacheService(repo, nil, 0, log, true).Flush(cmd.Context(), scope)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(patterns, ","))
			return err
		},
	}
	cmd.Flags().StringVar(&scope, "scope", service.CacheScopeAll, "classifications, runs or all")
	return cmd
}

func openContainer(cmd *cobra.Command) (*bootstrap.Container, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	app, err := bootstrap.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return app, log, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
