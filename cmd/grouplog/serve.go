package main

import (
	"context"
	"os"

	"github.com/aretw0/grouplog"
	"github.com/aretw0/grouplog/internal/cli"
	"github.com/aretw0/grouplog/internal/config"
	"github.com/aretw0/grouplog/internal/logging"
	"github.com/aretw0/grouplog/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Starts the HTTP server receiving LINE webhooks on /callback, with /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger := logging.New(level, cfg.Log.Format)

		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet && term.IsTerminal(int(os.Stderr.Fd())) {
			tui.PrintBanner(os.Stderr, grouplog.Version)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the startup banner")
}
