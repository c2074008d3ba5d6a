package cmd

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/luislealdev/nine-minutes-bot-api/internal/catalog"
	"github.com/luislealdev/nine-minutes-bot-api/internal/logger"
	"github.com/luislealdev/nine-minutes-bot-api/internal/secrets"
	"github.com/luislealdev/nine-minutes-bot-api/internal/server"
	"github.com/luislealdev/nine-minutes-bot-api/internal/store"
	"github.com/luislealdev/nine-minutes-bot-api/internal/survey"
	"github.com/luislealdev/nine-minutes-bot-api/internal/whatsapp"
)

const (
	defaultListen   = ":8080"
	defaultDatabase = "nine-minutes-bot.db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server that drives screening conversations",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (overrides the config)")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.CatalogFile == "" {
		logger.Fatal("catalog-file is required to resolve locations and branches")
	}

	if config.WhatsApp == nil || config.WhatsApp.APIURL == "" {
		logger.Fatal("whatsapp.api-url is required to deliver messages")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "waha api key",
		Value: config.WhatsApp.APIKey,
		File:  config.WhatsApp.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading waha api key",
			zap.Error(err),
			zap.String("hint", "set WAHA_API_KEY_FILE environment variable or the 'whatsapp.api-key-file' key in the configuration file"),
		)
	}

	database := config.Database
	if database == "" {
		database = defaultDatabase
	}

	db, err := sql.Open("sqlite", database)
	if err != nil {
		logger.Fatal("opening database", zap.String("path", database), zap.Error(err))
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		logger.Fatal("migrating database", zap.Error(err))
	}

	repo, err := store.New(db)
	if err != nil {
		logger.Fatal("creating progress store", zap.Error(err))
	}

	provider, err := catalog.NewProvider(config.CatalogFile, logger)
	if err != nil {
		logger.Fatal("loading catalog", zap.String("path", config.CatalogFile), zap.Error(err))
	}
	defer provider.Close()

	go provider.Watch()

	notifier := whatsapp.New(ctx, logger, config.WhatsApp.APIURL, apiKey, config.WhatsApp.Session)

	reentry := survey.NewReentryPolicy(time.Duration(config.CooldownDays) * 24 * time.Hour)

	engine := survey.New(provider, repo, notifier, reentry, logger)

	listen := viper.GetString("listen")
	if listen == "" {
		listen = config.Listen
	}
	if listen == "" {
		listen = defaultListen
	}

	logger.Info("starting the nine-minutes-bot webhook server",
		zap.String("version", version),
		zap.String("listen", listen),
		zap.String("catalog", config.CatalogFile),
		zap.String("database", database),
		zap.Duration("cooldown", reentry.Cooldown),
	)

	srv := server.New(engine, logger)
	if err := srv.Start(listen); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
