package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/config"
	"github.com/dukerupert/familist/internal/database"
	"github.com/dukerupert/familist/internal/email"
	"github.com/dukerupert/familist/internal/logging"
	"github.com/dukerupert/familist/internal/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "familist-server",
		Short:         "FamiList REST and WebSocket API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.db.Close()
			return serve(rt)
		},
	}

	restore := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Download and decrypt a backup into a new database file, then exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid backup id %q", args[0])
			}
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.db.Close()

			dst, _ := cmd.Flags().GetString("to")
			if dst == "" {
				dst = rt.cfg.DBPath + ".restored"
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			if err := rt.srv.BackupManager().Restore(ctx, id, dst); err != nil {
				return fmt.Errorf("restore backup %d: %w", id, err)
			}
			rt.logger.Info("backup restored; stop the server and move it over DB_PATH to use it", "backup_id", id, "path", dst)
			return nil
		},
	}
	restore.Flags().String("to", "", "destination file (default <DB_PATH>.restored)")

	root.AddCommand(restore)
	return root
}

type instance struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	srv    *server.Server
}

func bootstrap(ctx context.Context) (*instance, error) {
	envFile := config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if envFile != "" {
		logger.Debug("loaded env file", "path", envFile)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	mailer, err := newMailer(ctx, cfg.Email, logger.With("component", "email"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configure email: %w", err)
	}

	return &instance{
		cfg:    cfg,
		logger: logger,
		db:     db,
		srv:    server.New(db, cfg, mailer, logger),
	}, nil
}

func serve(rt *instance) error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	srv, logger := rt.srv, rt.logger
	srv.BackupManager().Start(ctx)
	srv.ReminderScheduler().Start(ctx)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + rt.cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("FamiList API listening", "addr", httpServer.Addr, "debug", rt.cfg.Debug)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	logger.Info("shutting down")
	stop()
	srv.ReminderScheduler().Stop()
	srv.BackupManager().Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return serveErr
}

// newMailer picks Postmark when a server token is set, else SES when a
// region is set, else a sender that only logs.
func newMailer(ctx context.Context, cfg config.EmailConfig, logger *slog.Logger) (email.Sender, error) {
	switch {
	case cfg.PostmarkToken != "":
		from := cfg.From
		if cfg.FromName != "" {
			from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
		}
		logger.Info("email via postmark", "from", cfg.From)
		return email.NewClient(cfg.PostmarkToken, from), nil
	case cfg.SESRegion != "":
		logger.Info("email via ses", "region", cfg.SESRegion, "from", cfg.From)
		return email.NewSESSender(ctx, cfg.SESRegion, cfg.From, cfg.FromName)
	default:
		logger.Warn("no email provider configured; messages will only be logged")
		return email.NewLogSender(logger), nil
	}
}
