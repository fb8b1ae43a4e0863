package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/hrmspro/hrms/internal"
	"github.com/hrmspro/hrms/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	apiURL     string
	verbose    bool

	cfg *internal.Config
)

var rootCmd = &cobra.Command{
	Use:           "hrms",
	Short:         "HRMS Pro",
	Long:          `HR management: the REST API server and a command line client for every HR screen.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Setup(os.Stderr, "development", level)

		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if apiURL != "" {
			loaded.Client.APIBaseURL = apiURL
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command. A panic anywhere below is reported as a
// plain message instead of a stack trace.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			logger.LoggerWrapper().Error("unexpected failure", "panic", r)
			fmt.Fprintln(os.Stderr, "Something went wrong. Please re-run the command.")
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads config.yml from path (a file or a directory), then
// ~/.hrms, with ENV_ prefixed variables on top. Without any file the
// defaults apply. Containers use plain environment variables instead.
func loadConfig(path string) (*internal.Config, error) {
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		return internal.LoadConfigFromEnv(), nil
	}

	v := viper.New()
	for key, val := range internal.Defaults() {
		v.SetDefault(key, val)
	}

	if path != "" && filepath.Ext(path) != "" {
		v.SetConfigFile(path)
	} else {
		if path != "" {
			v.AddConfigPath(path)
		}
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hrms"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var c internal.Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file or directory (default ./config.yml, then ~/.hrms/config.yml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL, overrides client.api_base_url")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(pagesCmd, listCmd, showCmd, createCmd, updateCmd, deleteCmd, exportCmd)
	rootCmd.AddCommand(leaveCmd, dashboardCmd, financeCmd, statusCmd)
}
