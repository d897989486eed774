package main

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/broadcast"
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/server"
	"github.com/wfunc/drawguess/session"
	"github.com/wfunc/drawguess/words"
)

func newRoomStore(cfg *config.Config, clock clockwork.Clock) (persistence.RoomStore, error) {
	switch cfg.Store.Backend {
	case "memory", "":
		return persistence.NewMemoryStore(clock), nil
	case "redis":
		return persistence.NewRedisStore(
			cfg.Store.Redis.Address,
			cfg.Store.Redis.Password,
			cfg.Store.Redis.DB,
		)
	case "postgres":
		return persistence.NewGormPostgreSQL(
			cfg.Store.Postgres.Host,
			cfg.Store.Postgres.Port,
			cfg.Store.Postgres.User,
			cfg.Store.Postgres.Password,
			cfg.Store.Postgres.DBName,
		)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	clock := clockwork.NewRealClock()

	// Initialize the room store backend
	store, err := newRoomStore(cfg, clock)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize room store: %v", err)
	}
	defer store.Close()
	logger.Log.Infof("Room store backend: %s", cfg.Store.Backend)

	// Word source
	wordSource := words.NewSource(cfg.Words.Dir)

	// Metrics
	mon := monitor.NewMonitor("drawguess")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Session manager and room broadcaster
	sessionManager := session.NewManager()
	broadcaster := broadcast.NewRoomBroadcaster(sessionManager)

	// Game engine
	roomTTL := time.Duration(cfg.Store.TTLSeconds) * time.Second
	engine := game.NewEngine(store, wordSource, broadcaster, clock, roomTTL)

	// Initialize and start the game server
	gameServer := server.NewGameServer(
		cfg.Server.HTTPAddress,
		cfg.Server.RPCAddress,
		engine,
		store,
		sessionManager,
		broadcaster,
		mon,
	)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
