package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"opsboard/internal/config"
	"opsboard/internal/logging"
	"opsboard/internal/mcp"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	store *source.Store
	cmap  normalize.CategoryMap
)

var rootCmd = &cobra.Command{
	Use:   "opsboard",
	Short: "Opsboard is an analytics MCP server for volunteer ambulance operations",
	Long: `An MCP Server that normalizes duty roster and dispatch log spreadsheet exports
and answers KPI, category, weekday, and roster coverage queries over them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		store = source.NewStore(cfg.CacheDir, cfg.FetchTimeout)

		cmap = normalize.DefaultCategoryMap()
		if cfg.CategoryMapPath != "" {
			cmap, err = normalize.LoadCategoryMap(cfg.CategoryMapPath)
			if err != nil {
				return err
			}
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Opsboard starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		server := mcp.NewServer(cfg, store, cmap, Version)
		return server.Run(ctx)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
