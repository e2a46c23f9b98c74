package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "skillbuddy"
)

type Config struct {
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	JobSearch *JobSearchConfig `mapstructure:"serpapi"`
	Interview *InterviewConfig `mapstructure:"interview"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type JobSearchConfig struct {
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Endpoint   string        `mapstructure:"endpoint"`
	Quota      int           `mapstructure:"quota"`
	CacheTTL   time.Duration `mapstructure:"cache-ttl"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max-retries"`
}

type InterviewConfig struct {
	TargetRole        string `mapstructure:"target-role"`
	Mode              string `mapstructure:"mode"`
	MaxClarifications int    `mapstructure:"max-clarifications"`
}

var (
	// Used for flags.
	cfgFile     string
	resumePath  string
	profilePath string
	targetRole  string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillbuddy is a career coaching cli: resume review, mock interviews, quizzes and job matching",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"gemini.api-key-file":  "GEMINI_API_KEY_FILE",
		"gemini.model":         "GEMINI_MODEL",
		"serpapi.api-key-file": "SERPAPI_KEY_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("gemini.max-log-length", 200)
	viper.SetDefault("serpapi.quota", 250)
	viper.SetDefault("serpapi.cache-ttl", time.Hour)
	viper.SetDefault("serpapi.timeout", 30*time.Second)
	viper.SetDefault("serpapi.max-retries", 2)
	viper.SetDefault("interview.target-role", "Software Engineer")
	viper.SetDefault("interview.mode", "live")
	viper.SetDefault("interview.max-clarifications", 2)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillbuddy.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringVar(&resumePath, "resume", "", "resume file to analyze (pdf or plain text)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "saved profile file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&targetRole, "role", "", "target job role (default is interview.target-role from the config)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env file is fine: keys may come from the environment or the config.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The default config file is optional. An explicit one is not.
		if cfgFile != "" || !errors.As(err, &notFound) {
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

	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}
	if config.JobSearch == nil {
		config.JobSearch = &JobSearchConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}

	return config, nil
}
