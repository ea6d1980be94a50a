// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/rapidaai/harness/pkg/commons"
)

var ErrNotConnected = errors.New("sqlite connector is not connected")

// SqliteConnector owns one gorm handle on a sqlite file. The path ":memory:"
// gives a private in-memory database.
type SqliteConnector interface {
	Name() string
	Connect(ctx context.Context) error
	DB(ctx context.Context) *gorm.DB
	IsConnected(ctx context.Context) bool
	Disconnect(ctx context.Context) error
}

type sqliteConnector struct {
	path   string
	logger commons.Logger

	mu sync.RWMutex
	db *gorm.DB
}

func NewSqliteConnector(path string, logger commons.Logger) SqliteConnector {
	return &sqliteConnector{path: path, logger: logger}
}

func (c *sqliteConnector) Name() string {
	return fmt.Sprintf("SQLITE %s", c.path)
}

func (c *sqliteConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return nil
	}
	db, err := gorm.Open(sqlite.Open(c.path), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", c.path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// sqlite serializes writers; one connection also keeps ":memory:" a single database
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return fmt.Errorf("ping %s: %w", c.path, err)
	}
	c.db = db
	c.logger.Info("connected to sqlite", "path", c.path)
	return nil
}

// DB returns a session bound to ctx, nil before Connect.
func (c *sqliteConnector) DB(ctx context.Context) *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil
	}
	return c.db.WithContext(ctx)
}

func (c *sqliteConnector) IsConnected(ctx context.Context) bool {
	db := c.DB(ctx)
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (c *sqliteConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	c.db = nil
	c.logger.Info("disconnected from sqlite", "path", c.path)
	return sqlDB.Close()
}
