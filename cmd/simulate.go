package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/luislealdev/nine-minutes-bot-api/internal/catalog"
	"github.com/luislealdev/nine-minutes-bot-api/internal/logger"
	"github.com/luislealdev/nine-minutes-bot-api/internal/store"
	"github.com/luislealdev/nine-minutes-bot-api/internal/survey"
)

const simulatedAddress = "5215500000000"

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a screening conversation interactively against the catalog, without WhatsApp",
	Run: func(_ *cobra.Command, _ []string) {
		simulate()
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

// consoleNotifier prints the bot's replies instead of delivering them.
type consoleNotifier struct{}

func (consoleNotifier) Send(_ context.Context, _, text string) error {
	fmt.Printf("\nBot:\n%s\n\n", text)
	return nil
}

// simulate runs the real engine and the real sqlite store, just in memory and
// with replies printed to the console. Useful for QA of catalog keyword edits.
func simulate() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.CatalogFile == "" {
		logger.Fatal("catalog-file is required to simulate a conversation")
	}

	c, err := catalog.Load(config.CatalogFile)
	if err != nil {
		logger.Fatal("loading catalog", zap.String("path", config.CatalogFile), zap.Error(err))
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		logger.Fatal("opening in-memory database", zap.Error(err))
	}
	defer db.Close()

	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		logger.Fatal("migrating in-memory database", zap.Error(err))
	}

	repo, err := store.New(db)
	if err != nil {
		logger.Fatal("creating progress store", zap.Error(err))
	}

	engine := survey.New(catalog.Static(c), repo, consoleNotifier{}, survey.NewReentryPolicy(0), logger)

	fmt.Println("Escribe un mensaje para iniciar la conversación (Ctrl+C para salir).")

	prompt := promptui.Prompt{Label: "Tú"}

	for {
		text, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		if text == "" {
			continue
		}

		if err := engine.HandleMessage(ctx, simulatedAddress, text); err != nil {
			logger.Error("handling message", zap.Error(err))
		}
	}
}
