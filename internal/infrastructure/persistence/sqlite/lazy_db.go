package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/logging"
)

// LazyDB opens the database on first access, so commands that never touch
// download history do not pay for the WASM compile and migrations.
type LazyDB struct {
	dbPath string
	once   sync.Once
	mu     sync.RWMutex
	db     *sql.DB
	err    error
	closed bool
}

var _ port.DatabaseProvider = (*LazyDB)(nil)

// NewLazyDB creates a provider for dbPath without opening it.
func NewLazyDB(dbPath string) *LazyDB {
	return &LazyDB{dbPath: dbPath}
}

// DB returns the connection, opening it on the first call.
func (l *LazyDB) DB(ctx context.Context) (*sql.DB, error) {
	l.once.Do(func() {
		log := logging.FromContext(ctx)
		db, err := NewConnection(ctx, l.dbPath)

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			if db != nil {
				_ = db.Close()
			}
			l.err = fmt.Errorf("database closed")
			return
		}
		l.db, l.err = db, err
		if err != nil {
			log.Error().Err(err).Str("path", l.dbPath).Msg("database initialization failed")
		}
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return nil, fmt.Errorf("database initialization failed: %w", l.err)
	}
	if l.closed {
		return nil, fmt.Errorf("database closed")
	}
	return l.db, nil
}

// Close closes the connection if it was opened. Later DB calls fail.
func (l *LazyDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// IsInitialized reports whether the connection has been opened.
func (l *LazyDB) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db != nil
}

// Path returns the database path.
func (l *LazyDB) Path() string {
	return l.dbPath
}
