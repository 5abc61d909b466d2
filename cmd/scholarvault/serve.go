package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"scholarvault/internal/handler"
	"scholarvault/internal/middleware"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library and tree view state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == "" {
				port = a.cfg.Port
			}
			ctx := cmd.Context()

			// The server starts even without a library; POST /api/sync fills it later
			if authed, err := a.authed(ctx); err != nil {
				a.logger.Warn("not logged in, serving an empty library")
			} else if err := a.loadLibrary(authed); err != nil {
				a.logger.Warn("initial load failed, serving an empty library", "error", err)
			}

			mux := handler.NewRouter(a.library, handler.NewBrowseState(), a.logger)

			var h http.Handler = mux
			h = middleware.Session(a.session)(h)
			h = middleware.Recovery(a.logger)(h)
			h = middleware.RequestLogger(a.logger)(h)

			corsHandler := cors.New(cors.Options{
				AllowedOrigins: strings.Split(a.cfg.CORSOrigins, ","),
				AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
				AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
			})
			h = corsHandler.Handler(h)

			server := &http.Server{
				Addr:         ":" + port,
				Handler:      h,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: a.cfg.HTTPTimeout + 15*time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			a.logger.Info("server starting", "port", port, "api_url", a.cfg.APIURL)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8080)")
	return cmd
}
