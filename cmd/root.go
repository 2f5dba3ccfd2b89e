package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cmee-tracker/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cmee-tracker",
	Short: "Track CMEE GPS watches",
	Long: `Poll the CMEE watch tracking service and publish every watch as a
location-aware device tracker (Home Assistant REST, MQTT discovery, NATS).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	d := config.Defaults()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Config file (yaml, toml or json)")
	flags.String("username", "", "CMEE username")
	flags.String("password", "", "CMEE password")
	flags.String("name", d.Name, "Display name of this tracker")
	flags.String("login-url", d.LoginURL, "Login URL template ({0}=username, {1}=password)")
	flags.String("device-data-url", d.DeviceDataURL, "Device data URL template ({0}=token)")
	flags.String("alarm-data-url", d.AlarmDataURL, "Alarm data URL template ({0}=token, {1}=start time)")
	flags.String("logout-url", d.LogoutURL, "Logout URL")
	flags.Bool("verify-ssl", d.VerifySSL, "Verify TLS certificates of the CMEE service")
	flags.Duration("request-timeout", d.RequestTimeout, "Timeout per HTTP request")
	flags.String("time-zone", d.TimeZone, "Time zone for presented timestamps (default: local)")
	flags.String("log-level", d.LogLevel, "Log level: trace, debug, info, warn, error")
	flags.String("log-format", d.LogFormat, "Log format: text or json")

	bindFlags(flags.Lookup, map[string]string{
		"username":        "username",
		"password":        "password",
		"name":            "name",
		"login_url":       "login-url",
		"device_data_url": "device-data-url",
		"alarm_data_url":  "alarm-data-url",
		"logout_url":      "logout-url",
		"verify_ssl":      "verify-ssl",
		"request_timeout": "request-timeout",
		"time_zone":       "time-zone",
		"log_level":       "log-level",
		"log_format":      "log-format",
	})

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("CMEE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("username", "CMEE_USERNAME")
	_ = viper.BindEnv("password", "CMEE_PASSWORD")
}

// bindFlags binds viper keys to the flags named in keys (key → flag).
func bindFlags(lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		_ = viper.BindPFlag(key, lookup(name))
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

// loadConfig reads the merged settings and installs the logger as the
// slog default.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg := config.Load(viper.GetViper())
	logger, err := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, err
	}
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return cfg, logger, err
	}
	return cfg, logger, nil
}
