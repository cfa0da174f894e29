// Package cmd implements the command-line interface of the audit
// service.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	auditcmd "github.com/jonesrussell/north-cloud/perf-auditor/cmd/audit"
	schedulercmd "github.com/jonesrussell/north-cloud/perf-auditor/cmd/scheduler"
)

// Version is set at build time.
var Version = "1.0.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	// rootCmd represents the root command.
	rootCmd = &cobra.Command{
		Use:   "perf-auditor",
		Short: "Browser performance audit pipeline",
		Long: `perf-auditor runs repeated browser performance measurements across
pages and emulated devices, reduces them to min/median/max statistics
and persists them against the host platform's page actions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("perf-auditor version %s\n", Version)
		},
	})

	rootCmd.AddCommand(auditcmd.Command())
	rootCmd.AddCommand(schedulercmd.Command())
}

// initConfig reads the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// The config file is optional; env vars and defaults cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v\n", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
	}

	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.format":     {"LOG_FORMAT"},
		"database.host":     {"DATABASE_HOST"},
		"database.port":     {"DATABASE_PORT"},
		"database.user":     {"DATABASE_USER"},
		"database.password": {"DATABASE_PASSWORD"},
		"database.dbname":   {"DATABASE_NAME"},
		"engine.binary":     {"LIGHTHOUSE_BINARY"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "perf-auditor",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":  "info",
		"format": "json",
	})

	viper.SetDefault("database", map[string]any{
		"host":    "127.0.0.1",
		"port":    "5432",
		"user":    "perf_auditor",
		"dbname":  "perf_auditor",
		"sslmode": "disable",
	})

	viper.SetDefault("audit", map[string]any{
		"dir":         "./audit-results",
		"devices":     []string{"desktop", "mobile"},
		"runs":        3,
		"concurrency": 1,
	})

	viper.SetDefault("engine", map[string]any{
		"binary":       "lighthouse",
		"chrome_flags": "--headless --no-sandbox",
		"timeout":      "2m",
	})

	viper.SetDefault("scheduler", map[string]any{
		"schedule": "0 3 * * *",
	})
}
