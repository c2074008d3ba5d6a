package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "nine-minutes-bot"
)

// Config is the application configuration, read from nine-minutes-bot.yaml.
type Config struct {
	Listen       string          `mapstructure:"listen"`
	CatalogFile  string          `mapstructure:"catalog-file"`
	Database     string          `mapstructure:"database"`
	CooldownDays int             `mapstructure:"cooldown-days"`
	WhatsApp     *WhatsAppConfig `mapstructure:"whatsapp"`
}

// WhatsAppConfig configures the WAHA gateway client.
type WhatsAppConfig struct {
	APIURL     string `mapstructure:"api-url"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Session    string `mapstructure:"session"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "nine-minutes-bot is the WhatsApp screening bot for job applicants",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("whatsapp.api-key-file", "WAHA_API_KEY_FILE"); err != nil {
		log.Fatalf("binding WAHA_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is nine-minutes-bot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only serve and simulate need the config file.
	if serveCmd.CalledAs() == "" && simulateCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
