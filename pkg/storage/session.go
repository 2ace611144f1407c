package storage

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// UnitOfWork is the transactional contract the importers depend on.
// Operations after a Commit or Rollback run in a new database transaction.
type UnitOfWork interface {
	Begin() error
	// DeleteAll removes every row of the table backing model.
	DeleteAll(model any) error
	// AddBatch inserts a non-empty slice of models.
	AddBatch(records any) error
	Commit() error
	Rollback() error
	// Close rolls back anything uncommitted. It is safe to call more than once.
	Close() error
}

var ErrSessionClosed = errors.New("session closed")

type session struct {
	db     *gorm.DB
	tx     *gorm.DB
	closed bool
	logger *log.Logger
}

func (s *session) Begin() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	s.tx = tx
	return nil
}

func (s *session) current() (*gorm.DB, error) {
	if err := s.Begin(); err != nil {
		return nil, err
	}
	return s.tx, nil
}

func (s *session) DeleteAll(model any) error {
	tx, err := s.current()
	if err != nil {
		return err
	}
	result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete rows: %w", result.Error)
	}
	s.logger.Debug("deleted rows", "model", fmt.Sprintf("%T", model), "rows", result.RowsAffected)
	return nil
}

func (s *session) AddBatch(records any) error {
	tx, err := s.current()
	if err != nil {
		return err
	}
	result := tx.Create(records)
	if result.Error != nil {
		return fmt.Errorf("failed to insert batch: %w", result.Error)
	}
	s.logger.Debug("inserted batch", "rows", result.RowsAffected)
	return nil
}

func (s *session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	return err
}
