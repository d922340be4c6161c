package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/flexigantt/pkg/controller/http"
	"github.com/secmon-lab/flexigantt/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var apiToken string
	var noUI bool
	var storeCfg storeFlags

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FLEXIGANTT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "api-token",
			Usage:       "Bearer token required by the REST API (no authentication when empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("FLEXIGANTT_API_TOKEN"),
			Destination: &apiToken,
		},
		&cli.BoolFlag{
			Name:        "no-ui",
			Usage:       "Serve the REST API only",
			Sources:     cli.EnvVars("FLEXIGANTT_NO_UI"),
			Destination: &noUI,
		},
	}
	flags = append(flags, storeCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			st, err := storeCfg.open(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer st.close(ctx)

			httpOpts := []httpctrl.Options{
				httpctrl.WithAPI(st.gw),
			}
			if apiToken != "" {
				httpOpts = append(httpOpts, httpctrl.WithAPIToken(apiToken))
			} else {
				logging.Default().Warn("REST API runs without authentication")
			}
			if !noUI {
				httpOpts = append(httpOpts, httpctrl.WithWorkspace(st.workspace()))
			}

			httpHandler, err := httpctrl.New(httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"backend", storeCfg.repo.Backend(),
					"ui", !noUI,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
