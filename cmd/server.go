package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP and WebSocket rescaling server",
	Long:  `Starts the pathfit server with a REST API for rescaling paths, fitting documents and building clip paths, a WebSocket endpoint for interactive use, and the run history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyFrameFlags(cmd, cfg); err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		var database *db.DB
		if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
			database, err = openCache(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
			Frame:    cfg.Frame(),
			Strict:   cfg.Strict,
		}, database)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "pathfit server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Default frame: %gx%g at (%g, %g)\n", cfg.Width, cfg.Height, cfg.OffsetX, cfg.OffsetY)
		if database != nil {
			fmt.Fprintf(os.Stderr, "  Cache: %s\n", database.Path())
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	addFrameFlags(serverCmd)
	serverCmd.Flags().Int("port", 8080, "Port to listen on (overrides config)")
	serverCmd.Flags().Bool("no-cache", false, "run without the cache and history database")
	rootCmd.AddCommand(serverCmd)
}
