package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrSessionClosed is returned when a session is used after Commit, Rollback or Close.
var ErrSessionClosed = errors.New("session closed")

// SessionFactory hands out transactional sessions bound to one connection handle.
type SessionFactory struct {
	db   *bun.DB
	opts *sql.TxOptions
}

func NewSessionFactory(db *bun.DB) *SessionFactory {
	return &SessionFactory{db: db}
}

// DB exposes the underlying handle for work that needs no transaction.
func (f *SessionFactory) DB() *bun.DB { return f.db }

// NewSession begins a transaction. Nothing written through the session is
// visible to others until Commit; queued models are not sent until Flush.
func (f *SessionFactory) NewSession(ctx context.Context) (*Session, error) {
	tx, err := f.db.BeginTx(ctx, f.opts)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{tx: tx}, nil
}

// Run executes fn inside a new session. The session is committed when fn
// returns nil and rolled back otherwise, including on panic.
func (f *SessionFactory) Run(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	s, err := f.NewSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback()
			panic(p)
		}
		if err != nil {
			_ = s.Rollback()
		}
	}()
	if err = fn(ctx, s); err != nil {
		return err
	}
	return s.Commit(ctx)
}

// Session is one unit of work. It is not safe for concurrent use; create one
// per goroutine.
type Session struct {
	tx      bun.Tx
	pending []any
	done    bool
}

// IDB lets callers build queries that run inside the session's transaction.
func (s *Session) IDB() bun.IDB { return s.tx }

// Add queues models for insertion on the next Flush or Commit.
func (s *Session) Add(models ...any) {
	s.pending = append(s.pending, models...)
}

// Pending reports how many models are queued.
func (s *Session) Pending() int { return len(s.pending) }

// Flush sends queued inserts inside the transaction without committing.
func (s *Session) Flush(ctx context.Context) error {
	if s.done {
		return ErrSessionClosed
	}
	for len(s.pending) > 0 {
		m := s.pending[0]
		if _, err := s.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("flush %T: %w", m, err)
		}
		s.pending = s.pending[1:]
	}
	return nil
}

// Commit flushes what is still queued and commits the transaction.
func (s *Session) Commit(ctx context.Context) error {
	if s.done {
		return ErrSessionClosed
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	s.done = true
	return s.tx.Commit()
}

// Rollback discards everything done through the session.
func (s *Session) Rollback() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	s.pending = nil
	return s.tx.Rollback()
}

// Close rolls back unless the session was already committed or rolled back.
// It is safe to defer right after NewSession.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	return s.Rollback()
}
