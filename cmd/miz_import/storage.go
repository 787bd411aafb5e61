package main

import (
	"fmt"

	"github.com/optics-dcs/miz-import/internal/config"
	"github.com/optics-dcs/miz-import/internal/database"
	"github.com/optics-dcs/miz-import/internal/importer"
	"github.com/optics-dcs/miz-import/internal/session"
	"github.com/optics-dcs/miz-import/internal/storage"
	"github.com/optics-dcs/miz-import/internal/storage/gormstore"
	"github.com/optics-dcs/miz-import/internal/storage/memory"
	"gorm.io/gorm"
)

// services are the backends one command works against.
type services struct {
	store    storage.Backend
	sessions session.Store
	manager  *database.Manager
}

func (s *services) db() *gorm.DB {
	if s.manager == nil {
		return nil
	}
	return s.manager.DB
}

func (s *services) importer() *importer.Importer {
	return importer.New(s.store, Logger, Metrics)
}

func (s *services) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			Logger.Warn("Failed to close storage backend", "error", err)
		}
	}
	if s.manager != nil {
		if err := s.manager.Close(); err != nil {
			Logger.Warn("Failed to close database", "error", err)
		}
	}
}

func openServices() (*services, error) {
	storageCfg := config.GetStorageConfig()

	svc := &services{}
	backend, manager, err := createStorageBackend(storageCfg)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	svc.store, svc.manager = backend, manager
	if err := svc.store.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		svc.Close()
		return nil, err
	}

	svc.sessions = createSessionStore(config.GetSessionConfig(), svc.db())
	return svc, nil
}

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, *database.Manager, error) {
	switch storageCfg.Type {
	case "postgres":
		manager := database.NewManager(dbLogger(), storageCfg.SQLitePath)
		if err := manager.Connect(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if manager.ShouldSaveLocal {
			Logger.Warn("Postgres unavailable, using SQLite", "path", storageCfg.SQLitePath)
		}
		Logger.Info("Database storage backend initialized", "local", manager.ShouldSaveLocal)
		return gormstore.New(gormstore.Dependencies{DB: manager.DB, Logger: Logger}), manager, nil

	case "sqlite":
		manager := database.NewManager(dbLogger(), storageCfg.SQLitePath)
		if err := manager.ConnectSQLite(); err != nil {
			return nil, nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend initialized", "path", storageCfg.SQLitePath)
		return gormstore.New(gormstore.Dependencies{DB: manager.DB, Logger: Logger}), manager, nil

	default:
		Logger.Info("Memory storage backend initialized")
		return memory.New(), nil, nil
	}
}

func createSessionStore(sessionCfg config.SessionConfig, db *gorm.DB) session.Store {
	if sessionCfg.Type == "database" && db != nil {
		return session.NewGormStore(db, sessionCfg.TTL)
	}
	if sessionCfg.Type == "database" {
		Logger.Debug("No database for sessions, keeping them in memory")
	}
	return session.NewMemoryStore(sessionCfg.CacheSize, sessionCfg.TTL)
}
