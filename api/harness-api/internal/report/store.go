// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/connectors"
)

const DefaultListLimit = 50

var ErrReportNotFound = errors.New("report not found")

// Store archives reports in sqlite.
type Store interface {
	// Migrate creates or updates the reports table.
	Migrate(ctx context.Context) error
	// Save stores a report under a generated id and returns it.
	Save(ctx context.Context, report *Report) (string, error)
	Get(ctx context.Context, id string) (*Report, error)
	// List returns the newest reports first; an empty kind lists all kinds.
	List(ctx context.Context, kind string, limit int) ([]*Report, error)
	Delete(ctx context.Context, id string) error
}

type sqliteStore struct {
	sqlite connectors.SqliteConnector
	logger commons.Logger
}

func NewStore(sqlite connectors.SqliteConnector, logger commons.Logger) Store {
	return &sqliteStore{
		sqlite: sqlite,
		logger: logger,
	}
}

func (s *sqliteStore) db(ctx context.Context) (*gorm.DB, error) {
	db := s.sqlite.DB(ctx)
	if db == nil {
		return nil, connectors.ErrNotConnected
	}
	return db, nil
}

func (s *sqliteStore) Migrate(ctx context.Context) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&Report{}); err != nil {
		return fmt.Errorf("failed to migrate reports: %w", err)
	}
	return nil
}

func (s *sqliteStore) Save(ctx context.Context, report *Report) (string, error) {
	db, err := s.db(ctx)
	if err != nil {
		return "", err
	}
	if err := db.Create(report).Error; err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	s.logger.Infof("saved report: id=%s, kind=%s, direction=%s, status=%s",
		report.ID, report.Kind, report.Direction, report.Status)
	return report.ID, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*Report, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &report, nil
}

func (s *sqliteStore) List(ctx context.Context, kind string, limit int) ([]*Report, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := db.Order("created_date DESC").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	reports := make([]*Report, 0)
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&Report{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	s.logger.Debugf("deleted report: id=%s", id)
	return nil
}
