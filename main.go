package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zachkp/rest-portfolio/internal/config"
	"github.com/Zachkp/rest-portfolio/internal/effects"
	"github.com/Zachkp/rest-portfolio/internal/logging"
	"github.com/Zachkp/rest-portfolio/internal/visitor"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "rest-portfolio",
		Short:         "Rest's portfolio page server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		rainCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio page (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func rainCmd() *cobra.Command {
	var cols, rows int
	cmd := &cobra.Command{
		Use:   "rain",
		Short: "Draw the matrix rain in the terminal until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cols == 0 || rows == 0 {
				w, h, err := term.GetSize(int(os.Stdout.Fd()))
				if err != nil {
					w, h = 80, 24
				}
				if cols == 0 {
					cols = w
				}
				if rows == 0 {
					rows = h - 1
				}
			}
			return effects.NewTerminal(cols, rows, nil).Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&cols, "cols", 0, "columns (default: terminal width)")
	cmd.Flags().IntVar(&rows, "rows", 0, "rows (default: terminal height)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rest-portfolio %s (%s)\n", version, commit)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	gin.SetMode(cfg.GinMode)

	var store *visitor.Store
	if cfg.DBPath != "" {
		store, err = visitor.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		log.Info().Str("db", cfg.DBPath).Msg("Privacy: visitor tracking enabled with hashed IP addresses")

		go func() {
			n, err := store.Cleanup(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Error cleaning up old visitor data")
				return
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("Privacy cleanup: removed old visitor records")
			}
		}()
	}

	s := newServer(cfg, store, log)
	go s.pages.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("portfolio listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
