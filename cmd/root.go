package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/wgapi/cache"
	"github.com/s0up4200/wgapi/config"
	"github.com/s0up4200/wgapi/wargaming"
	"github.com/s0up4200/wgapi/wgapi"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *wgapi.Client

	responses cache.Cache

	// Global flags
	gameFlag     string
	regionFlag   string
	languageFlag string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wgapi",
	Short: "Query the Wargaming public API from the command line",
	Long: `wgapi is a CLI for the Wargaming public API (World of Tanks, World of
Warships, World of Warplanes, Blitz and Console). Endpoints and their
parameters come from the bundled API schema; results are cached for the
lifetime of the process and paginated endpoints can be walked page by page.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&gameFlag, "game", "g", "", "game to query (wot, wotb, wotx, wows, wowp, wgn)")
	rootCmd.PersistentFlags().StringVarP(&regionFlag, "region", "r", "", "region to query (ru, eu, na, asia, ps4, xbox)")
	rootCmd.PersistentFlags().StringVarP(&languageFlag, "language", "l", "", "default response language")

	// Add subcommands
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(endpointsCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line overrides
	if gameFlag != "" {
		cfg.Application.Game = strings.ToLower(gameFlag)
	}
	if regionFlag != "" {
		cfg.Application.Region = strings.ToLower(regionFlag)
	}
	if languageFlag != "" {
		cfg.Application.Language = languageFlag
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	responses, err = cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create response cache: %w", err)
	}

	client = wgapi.NewClient(logger,
		wgapi.WithCache(responses),
		wgapi.WithTimeout(cfg.API.Timeout),
		wgapi.WithUserAgent(cfg.API.UserAgent),
		wgapi.WithRetryPolicy(wgapi.RetryPolicy{
			MaxAttempts:     cfg.API.RetryCount,
			InitialInterval: cfg.API.RetryInterval,
		}),
	)

	logger.Debug().
		Str("game", cfg.Application.Game).
		Str("region", cfg.Application.Region).
		Str("cache", cfg.Cache.Backend).
		Msg("Client initialized")

	return nil
}

// closeApp releases the response cache connection, if any
func closeApp(cmd *cobra.Command, args []string) error {
	if c, ok := responses.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close response cache: %w", err)
		}
		logger.Debug().Msg("Response cache closed")
	}
	return nil
}

// newAPI builds the configured game's API for region
func newAPI(region string) (*wargaming.API, error) {
	return wargaming.New(
		cfg.Application.Game,
		cfg.Application.ID,
		cfg.Application.Language,
		region,
		client,
		wargaming.WithBaseURL(cfg.API.BaseURL),
		wargaming.WithSchemaDir(cfg.API.SchemaDir),
		wargaming.WithLogger(logger),
	)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
