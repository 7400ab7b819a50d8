// ABOUTME: Root command for the homelabcmd CLI
// ABOUTME: Handles global flags, configuration and the shared backend client

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/client"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/config"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/logger"
	"github.com/DarrenBenson/HomelabCmd-sub011/internal/pages"
)

var (
	apiURL     string
	jsonOutput bool
)

const apiURLEnv = config.EnvPrefix + "_API_URL"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "homelabcmd",
	Short: "CLI for the HomelabCmd monitoring backend",
	Long: `homelabcmd is a command-line interface and terminal dashboard for HomelabCmd.

It lists servers, alerts, remediation actions, scans and power costs, and lets you
acknowledge alerts or approve actions without opening the web UI.

Configuration is read from .env / .env.local, then ~/.config/homelabcmd/config.yaml,
then the environment. The --api-url flag overrides all of them.

Environment Variables:
  HOMELABCMD_API_URL          Backend API URL (default: http://localhost:8080)
  HOMELABCMD_API_KEY          API key sent as X-API-Key
  HOMELABCMD_PAGE_SIZE        Rows per page for paged lists (default: 20)
  HOMELABCMD_POLL_INTERVAL    Refresh interval for watch and dashboard (default: 30s)
  HOMELABCMD_REQUEST_TIMEOUT  Per-request timeout (default: 30s)
  LOG_LEVEL, LOG_FORMAT       slog level and text/json format`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides "+apiURLEnv+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL the commands use: flag, env, config.yaml, then default.
// When the configuration cannot be loaded it falls back to flag, env, then default.
func GetAPIURL() string {
	if cfg, err := GetConfig(); err == nil {
		return cfg.APIURL
	}
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv(apiURLEnv); envURL != "" {
		return envURL
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// GetConfig loads the merged configuration with the --api-url override applied
func GetConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// deps bundles what every command needs to talk to the backend
type deps struct {
	cfg    *config.Config
	client *client.Client
	opts   pages.Options
}

// newDeps loads config, configures stderr logging and builds the client
func newDeps() (*deps, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	log := logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return newDepsWith(cfg, log), nil
}

func newDepsWith(cfg *config.Config, log *slog.Logger) *deps {
	c := client.New(cfg.APIURL,
		client.WithAPIKey(cfg.APIKey),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
	)
	return &deps{
		cfg:    cfg,
		client: c,
		opts: pages.Options{
			PageSize:  cfg.PageSize,
			NoticeTTL: cfg.NoticeTTL,
			Logger:    log,
		},
	}
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// exit terminates with code when it is non-zero
func exit(code int) {
	if code != 0 {
		os.Exit(code)
	}
}
