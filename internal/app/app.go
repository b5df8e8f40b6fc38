package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/roomcast/server/internal/controller"
	connInmemory "github.com/roomcast/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/roomcast/server/internal/repository/room/inmemory"
	userInmemory "github.com/roomcast/server/internal/repository/user/inmemory"
	"github.com/roomcast/server/internal/service/room"
	"github.com/roomcast/server/pkg/ctxlogger"
)

type AppConfig struct {
	Secret          string        `json:"-"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	LogLevel        string        `json:"log_level"`
	DefaultRoomSize int           `json:"default_room_size"`
	RoomSizeCap     int           `json:"room_size_cap"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	GracePeriod     time.Duration `json:"grace_period"`
	ProbeTimeout    time.Duration `json:"probe_timeout"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.DefaultRoomSize < 1 {
		return fmt.Errorf("default room size must be greater than 0")
	}
	if cfg.RoomSizeCap < cfg.DefaultRoomSize {
		return fmt.Errorf("room size cap must not be below the default room size")
	}
	if cfg.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}
	if cfg.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive")
	}
	if cfg.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	roomRepo := roomInmemory.NewRepo()
	userRepo := userInmemory.NewRepo()
	connRepo := connInmemory.NewRepo()

	roomService := room.NewService(roomRepo, userRepo, connRepo, &room.Config{
		Secret:          cfg.Secret,
		DefaultRoomSize: cfg.DefaultRoomSize,
		RoomSizeCap:     cfg.RoomSizeCap,
		CleanupInterval: cfg.CleanupInterval,
		GracePeriod:     cfg.GracePeriod,
		ProbeTimeout:    cfg.ProbeTimeout,
	}, logger)
	defer roomService.Close()

	controller := controller.NewController(roomService, cfg.Secret, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
