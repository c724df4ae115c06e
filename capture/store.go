// go-ld700
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ld700.
//
// go-ld700 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ld700 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ld700; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package capture persists interpreter sessions (bytes, vsync ticks, leader
// pulses and the player callbacks they caused) to SQLite so they can be
// inspected and replayed.
package capture

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrUnknownSession is returned for a session ID that is not in the store
var ErrUnknownSession = errors.New("unknown capture session")

// Store wraps the GORM database holding captured sessions
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open opens or creates the capture database at path. A nil logger
// silences both the store and GORM.
func Open(path string, log *slog.Logger) (*Store, error) {
	var gormLog logger.Interface
	if log != nil {
		gormLog = logger.New(
			slog.NewLogLogger(log.Handler(), slog.LevelWarn),
			logger.Config{
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	} else {
		gormLog = logger.Default.LogMode(logger.Silent)
		log = slog.New(slog.DiscardHandler)
	}

	// pure Go SQLite driver
	dialector := sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := configureSQLite(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to configure capture database: %w", err)
	}

	if err := db.AutoMigrate(&Session{}, &Event{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate capture database: %w", err)
	}

	log.Debug("capture database opened", slog.String("path", path))
	return &Store{db: db, log: log}, nil
}

func configureSQLite(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

// Begin starts a new recorded session
func (s *Store) Begin(description string) (*Recorder, error) {
	session := Session{
		ID:          uuid.NewString(),
		Description: description,
		StartedAt:   time.Now(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create capture session: %w", err)
	}
	s.log.Info("capture started", slog.String("session", session.ID), slog.String("description", description))
	return newRecorder(s, session.ID), nil
}

// Sessions lists every captured session, oldest first
func (s *Store) Sessions() ([]Session, error) {
	var sessions []Session
	if err := s.db.Order("started_at").Order("id").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Session returns one session
func (s *Store) Session(id string) (*Session, error) {
	var session Session
	err := s.db.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Events returns the events of a session in recording order
func (s *Store) Events(sessionID string) ([]Event, error) {
	if _, err := s.Session(sessionID); err != nil {
		return nil, err
	}
	var events []Event
	if err := s.db.Where("session_id = ?", sessionID).Order("seq").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes a session and its events
func (s *Store) Delete(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", sessionID).Delete(&Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
		}
		return tx.Where("session_id = ?", sessionID).Delete(&Event{}).Error
	})
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
