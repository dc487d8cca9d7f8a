package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"novelhub/internal/backend/postgrest"
	"novelhub/internal/backend/realtime"
	"novelhub/internal/config"
	"novelhub/internal/logger"
	"novelhub/internal/notify"
	"novelhub/internal/service"
	"novelhub/internal/session"
)

// app is built once per invocation, after flags are parsed.
type app struct {
	cfg      *config.CLIConfig
	log      *slog.Logger
	out      io.Writer
	notifier notify.Notifier
	services *service.Set
	session  *session.Manager
}

var cli *app

// successNotices prints success toasts only; failures come back as the
// command's error and are printed once by Execute.
type successNotices struct {
	console *notify.Console
}

func (s successNotices) Success(ctx context.Context, msg string) { s.console.Success(ctx, msg) }
func (successNotices) Error(context.Context, error)              {}

func newApp(ctx context.Context, cfg *config.CLIConfig, out io.Writer) (*app, error) {
	if cfg.NoColor {
		color.NoColor = true
	}
	log, err := logger.New(cfg.LogLevel, "text", os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	client := postgrest.NewClient(postgrest.Options{
		BaseURL: cfg.BackendURL,
		AnonKey: cfg.AnonKey,
		Logger:  log,
	})
	live, err := realtime.NewClient(cfg.BackendURL, cfg.AnonKey, realtime.WithLogger(log))
	if err != nil {
		return nil, err
	}

	notifier := successNotices{console: notify.NewConsole(out)}
	opts := service.Options{
		Timeout:  cfg.RequestTimeout,
		Notifier: notifier,
		Logger:   log,
	}
	services := service.NewSet(client, client, live, service.DefaultMaxUploadSize, opts)

	var store session.Store
	switch cfg.TokenStore {
	case "file":
		store = session.NewFileStore(session.DefaultFilePath())
	default:
		store = session.NewKeyringStore()
	}
	manager := session.NewManager(client, services.Profiles, session.Options{
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		Timeout:   cfg.RequestTimeout,
		Notifier:  notifier,
		Logger:    log,
	})
	if err := manager.Initialize(ctx); err != nil {
		log.Warn("could not restore session", "error", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		out:      out,
		notifier: notifier,
		services: services,
		session:  manager,
	}, nil
}

// context attaches the signed-in user's credentials.
func (a *app) context(ctx context.Context) (context.Context, error) {
	return a.session.Context(ctx)
}

// user returns the signed-in user's id and an authenticated context.
func (a *app) user(ctx context.Context) (string, context.Context, error) {
	id := a.session.UserID()
	if id == "" {
		return "", ctx, service.ErrLoginRequired
	}
	ctx, err := a.session.Context(ctx)
	return id, ctx, err
}

// openUpload opens an image file for upload. The caller closes the file.
func openUpload(path string) (*service.Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat image: %w", err)
	}
	return &service.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Body:        f,
	}, f, nil
}
