package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/comicshelf"
	"github.com/eringen/comicshelf/views"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long:  "Run the web server. SESSION_SECRET must be set.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = comicshelf.MustEnv("SESSION_SECRET")
		}

		app := comicshelf.New(cfg, views.New(cfg.Name), comicshelf.WithStaticDir(staticDir(cmd)))
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return <-errc
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (env ADDR, default :3000)")
}
