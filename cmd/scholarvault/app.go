package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"scholarvault/internal/apiclient"
	"scholarvault/internal/auth"
	"scholarvault/internal/config"
	"scholarvault/internal/domain"
	"scholarvault/internal/domain/repositories"
	"scholarvault/internal/domain/services"
	"scholarvault/internal/repository"
	librarysvc "scholarvault/internal/service/library"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app holds everything a command needs; setup runs once before any command
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	client  *apiclient.Client
	session *auth.Manager
	cache   repositories.SnapshotRepository
	library services.LibraryService
}

func (a *app) setup(cmd *cobra.Command) error {
	_ = godotenv.Load()
	a.cfg = config.Load()
	ctx := cmd.Context()

	// serve logs to stdout like any server; other commands keep stdout
	// for their output and log to a file
	var logOut io.Writer = os.Stdout
	if cmd.Name() != "serve" {
		f, err := config.SetupLogFile(a.cfg.LogDir(), "scholarvault", a.cfg.LogMaxFiles)
		if err != nil {
			logOut = io.Discard
		} else {
			a.logFile = f
			logOut = f
		}
	}
	a.logger = config.NewLogger(logOut, a.cfg.Environment)
	a.logger.Debug("command starting",
		"command", cmd.CommandPath(),
		"api_url", a.cfg.APIURL,
		"home", a.cfg.Home,
	)

	a.client = apiclient.New(a.cfg.APIURL, a.cfg.HTTPTimeout, a.cfg.UploadTimeout, a.logger)

	var verifier auth.TokenVerifier = auth.NewClaimsReader(a.logger)
	if a.cfg.JWKSURL != "" {
		v, err := auth.NewJWKSVerifier(ctx, a.cfg.JWKSURL, a.logger)
		if err != nil {
			return fmt.Errorf("load signing keys: %w", err)
		}
		verifier = v
	}

	store := auth.NewFileCredentialStore(a.cfg.CredentialsPath())
	a.session = auth.NewManager(a.client, store, verifier, a.cfg.APIURL, a.logger)
	if err := a.session.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	cache, err := repository.OpenSnapshotRepository(ctx, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn("snapshot cache unavailable", "error", err)
		cache = repository.DisabledCache{}
	}
	a.cache = cache
	a.library = librarysvc.NewLibraryService(a.client, a.cache, a.logger)
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close snapshot cache", "error", err)
		}
	}
	if a.session != nil {
		a.session.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// authed returns ctx carrying the signed-in session
func (a *app) authed(ctx context.Context) (context.Context, error) {
	ctx, err := a.session.Context(ctx)
	if err != nil {
		return ctx, fmt.Errorf("not logged in, run `scholarvault login` first: %w", err)
	}
	return ctx, nil
}

// loadLibrary fills the local model from the cache, syncing when nothing
// usable is cached
func (a *app) loadLibrary(ctx context.Context) error {
	_, err := a.library.LoadCached(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		a.logger.Warn("cached library unusable, syncing", "error", err)
	}
	_, err = a.library.Sync(ctx)
	return err
}

// authedLibrary is authed followed by loadLibrary
func (a *app) authedLibrary(ctx context.Context) (context.Context, error) {
	ctx, err := a.authed(ctx)
	if err != nil {
		return ctx, err
	}
	return ctx, a.loadLibrary(ctx)
}
