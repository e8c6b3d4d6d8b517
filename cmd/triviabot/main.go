package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jasonholloway125/Trivia-Bot/ai/llm"
	"github.com/jasonholloway125/Trivia-Bot/bot/telegram"
	"github.com/jasonholloway125/Trivia-Bot/internal/profile"
	"github.com/jasonholloway125/Trivia-Bot/internal/version"
	"github.com/jasonholloway125/Trivia-Bot/server"
	"github.com/jasonholloway125/Trivia-Bot/store"
	"github.com/jasonholloway125/Trivia-Bot/trivia"
)

var rootCmd = &cobra.Command{
	Use:   "triviabot",
	Short: `A Telegram bot that serves AI-generated trivia questions per chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Try to load .env file from current directory (ignore error if file doesn't exist)
		_ = godotenv.Load()
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		guildStore := store.NewMemoryStore()
		registry := prometheus.NewRegistry()
		metrics := trivia.NewMetrics(registry, guildStore)

		llmService, err := llm.NewService(&llm.Config{
			Provider: instanceProfile.LLMProvider,
			Model:    instanceProfile.LLMModel,
			APIKey:   instanceProfile.LLMAPIKey,
			BaseURL:  instanceProfile.LLMBaseURL,
			Timeout:  instanceProfile.LLMTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create LLM service: %w", err)
		}

		conversations := trivia.NewConversationManager(llmService, metrics)
		filters := trivia.NewFilters(metrics)
		dispatcher := trivia.NewDispatcher(guildStore, conversations, filters, metrics)
		sweeper := trivia.NewSweeper(guildStore, metrics, trivia.SweeperConfig{
			Interval:      instanceProfile.SweepInterval,
			IdleThreshold: instanceProfile.IdleThreshold,
		})

		bot, err := telegram.NewBot(&telegram.Config{
			BotToken: instanceProfile.TelegramToken,
		}, dispatcher, guildStore)
		if err != nil {
			return fmt.Errorf("failed to create Telegram bot: %w", err)
		}

		ops := server.NewServer(instanceProfile, registry)

		c := make(chan os.Signal, 1)
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			slog.Info("shutdown signal received")
			cancel()
		}()

		llmService.Warmup(ctx)

		slog.Info("triviabot started",
			"version", instanceProfile.Version,
			"minor_version", version.GetMinorVersion(instanceProfile.Version),
			"mode", instanceProfile.Mode,
			"llm_provider", instanceProfile.LLMProvider,
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			sweeper.Start(gctx)
			return nil
		})
		g.Go(func() error {
			if err := ops.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		return g.Wait()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the ops server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the ops server")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("triviabot")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("triviabot exited with error", "error", err)
		os.Exit(1)
	}
}
