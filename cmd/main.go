package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"PokerRooms/config"
	"PokerRooms/internal/auth"
	"PokerRooms/internal/game/manager"
	"PokerRooms/internal/matchmaker"
	"PokerRooms/internal/roomstore"
	"PokerRooms/internal/storage"
	"PokerRooms/internal/utils"
	"PokerRooms/internal/websocket"
)

var CLI struct {
	Config   string `short:"c" help:"Path to YAML configuration file" type:"path"`
	Port     string `short:"p" help:"Listen address, e.g. :8080 (overrides config)"`
	LogLevel string `short:"l" help:"Log level: debug, info, warn, error (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Description("Multiplayer poker room server."))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		log.Error("load config", "err", err)
		kctx.Exit(1)
	}
	if CLI.Port != "" {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Log.Level = CLI.LogLevel
	}

	logger, err := utils.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Error("bad log level", "level", cfg.Log.Level, "err", err)
		kctx.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		kctx.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	clock := quartz.NewReal()

	//-------------------------------------------------------
	// 1. 存储：Redis 可选，Postgres 可选
	//-------------------------------------------------------
	store := roomstore.NewMemoryRepo()
	mmRepo := matchmaker.NewMemoryRepo()
	if cfg.Redis.Addr != "" {
		rdb, err := storage.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = roomstore.NewRedisRepo(rdb, cfg.Redis.RoomTTL)
		mmRepo = matchmaker.NewRedisRepo(rdb)
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("redis disabled, using in-memory stores")
	}

	var recorders []manager.Recorder
	if cfg.Database.DSN != "" {
		history, err := storage.InitPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer history.Close()
		recorders = append(recorders, history)
		logger.Info("hand history enabled")
	}

	//-------------------------------------------------------
	// 2. Hub / GameManager / Matchmaker
	//-------------------------------------------------------
	hub := websocket.NewHub(logger)
	mgr := manager.NewGameManager(hub, manager.Options{
		StartingChips: cfg.Game.StartingChips,
		MaxPlayers:    cfg.Game.MaxPlayers,
		RestartDelay:  cfg.Game.RestartDelay,
		Clock:         clock,
		Logger:        logger,
		Store:         store,
		Recorders:     recorders,
	})
	mm := matchmaker.NewService(mmRepo, hub, mgr, matchmaker.Options{
		PlayerTTL:    cfg.Matchmaker.PlayerTTL,
		MaxTableSize: cfg.Game.MaxPlayers,
		Clock:        clock,
		Logger:       logger,
	})
	authH := auth.NewHandler(cfg.JWT.Secret, auth.Options{
		TokenTTL: cfg.JWT.TokenTTL,
		Clock:    clock,
		Logger:   logger,
	})

	if logger.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           newRouter(cfg, hub, mgr, mm, authH),
		ReadHeaderTimeout: 10 * time.Second,
	}

	//-------------------------------------------------------
	// 3. 启动：hub 循环、消息消费、HTTP
	//-------------------------------------------------------
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		mgr.Consume(gctx, hub.Incoming())
		return nil
	})
	g.Go(func() error {
		logger.Info("server running", "addr", srv.Addr, "auth", cfg.Auth.Required)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		mgr.Close()
		return err
	})
	return g.Wait()
}
