package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "zerohunger"
)

// Config is the engine configuration loaded from zerohunger.yaml.
type Config struct {
	Database   string            `mapstructure:"database"`
	Embedding  *EmbeddingConfig  `mapstructure:"embedding"`
	Geo        *GeoConfig        `mapstructure:"geo"`
	NATS       *NATSConfig       `mapstructure:"nats"`
	Assignment *AssignmentConfig `mapstructure:"assignment"`
	Metrics    *MetricsConfig    `mapstructure:"metrics"`
}

type EmbeddingConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type GeoConfig struct {
	ProviderURL string        `mapstructure:"provider-url"`
	CacheTTL    time.Duration `mapstructure:"cache-ttl"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type AssignmentConfig struct {
	RetryInitial       time.Duration `mapstructure:"retry-initial"`
	RetryMax           time.Duration `mapstructure:"retry-max"`
	MaxAttempts        int           `mapstructure:"max-attempts"`
	EmergencyScanLimit int           `mapstructure:"emergency-scan-limit"`
	EmergencyPolicy    string        `mapstructure:"emergency-policy"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "zerohunger matches food donations to recipients and assigns volunteer couriers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is zerohunger.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// Commands run fine on defaults when no config file exists.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Database == "" {
		config.Database = "zerohunger.db"
	}

	return config, nil
}
