package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-api/config"
	"library-api/handlers"
	"library-api/i18n"
	"library-api/routes"
	"library-api/service"
)

const portFlag = "port"

var serveFlags = map[string]cobraflags.Flag{
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Port to listen on (overrides PORT)",
	},
}

func NewServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. The schema is migrated before the server starts
accepting requests. SIGINT and SIGTERM trigger a graceful shutdown.`,
		RunE: serveCommand,
	}
	cobraflags.RegisterMap(serveCmd, serveFlags)
	return serveCmd
}

func serveCommand(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if port := serveFlags[portFlag].GetString(); port != "" {
		a.cfg.Port = port
	}
	if a.cfg.GinMode != "" {
		gin.SetMode(a.cfg.GinMode)
	}

	if err := config.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cat, err := i18n.Load(a.cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	reservations := service.NewReservations(a.store, service.Options{
		Policies:       a.cfg.Policies,
		ReminderWindow: a.days(a.cfg.ReminderWindowDays),
		UpcomingWindow: a.days(a.cfg.UpcomingWindowDays),
		Logger:         a.log,
	})
	h := handlers.New(
		service.NewAccounts(a.identity, a.store, a.log),
		service.NewBooks(a.store, a.log),
		reservations,
		a.log,
	)
	engine := routes.NewEngine(cat, a.log, h, routes.Deps{
		Sessions:   a.identity,
		Profiles:   a.store,
		AnonKey:    a.cfg.Store.AnonKey,
		ServiceKey: a.cfg.Store.ServiceKey,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    a.cfg.Addr(),
		Handler: engine,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server running",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.Env),
			zap.Bool("single_use_extension", a.cfg.Policies.SingleUseExtension),
			zap.Bool("enforce_availability", a.cfg.Policies.EnforceAvailability),
			zap.Bool("reminder_ownership", a.cfg.Policies.ReminderOwnership),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		a.log.Warn("http server shutdown failed", zap.Error(err))
	}
	a.log.Info("goodbye")
	return nil
}
