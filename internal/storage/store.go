package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skywave-radio/console/internal/control"
)

// Session identifies one daemon run: which drivers were selected and the
// RxConfig/TxConfig they started with, stored as text in whatever format
// the caller renders them.
type Session struct {
	ID        int64
	StartTime time.Time
	RxDriver  string
	RxConfig  string
	TxDriver  string
	TxConfig  string
}

// Event is one logged ControlPlane.Event, timestamped and tied to a
// Session.
type Event struct {
	ID            int64
	SessionID     int64
	Timestamp     time.Time
	Kind          string
	Armed         sql.NullBool
	Capturing     sql.NullBool
	CenterDb      sql.NullFloat64
	ThresholdDb   sql.NullFloat64
	Above         sql.NullBool
	Path          sql.NullString
	Error         sql.NullString
	RtlsdrPresent sql.NullBool
	HackrfPresent sql.NullBool
}

// Store persists sessions and the events emitted during them.
type Store interface {
	CreateSession(ctx context.Context, rxDriver, rxConfig, txDriver, txConfig string) (int64, error)
	Sessions(ctx context.Context) ([]*Session, error)
	InsertEvent(ctx context.Context, sessionID int64, ev control.Event) error
	Events(ctx context.Context, sessionID int64) ([]*Event, error)
	Close() error
}

// SqliteStore is the sqlite3-backed Store, opening its connection lazily
// and once, as a single WAL-mode connection since this log's write rate is
// low (one row per session, one per notable event).
type SqliteStore struct {
	dbPath string

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the sqlite3 file at dbPath.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.dbErr = fmt.Errorf("opening connection: %w", err)
			return
		}
		if _, err := db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}
		s.db = db
	})
	return s.db, s.dbErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, rxDriver, rxConfig, txDriver, txConfig string) (sessionID int64, err error) {
	db, err := s.getDB()
	if err != nil {
		return 0, fmt.Errorf("getting connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, rxDriver, rxConfig, txDriver, txConfig)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return result.LastInsertId()
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, fmt.Errorf("getting connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.StartTime, &sess.RxDriver, &sess.RxConfig, &sess.TxDriver, &sess.TxConfig); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// InsertEvent logs ev under sessionID. The ControlPlane's own in-memory
// event queue is the UI's live path; this call happens off that hot path,
// typically from a subscriber goroutine draining ControlPlane.Events().
func (s *SqliteStore) InsertEvent(ctx context.Context, sessionID int64, ev control.Event) (err error) {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	kind, armed, capturing, centerDb, thresholdDb, above, path, errStr, rtlsdr, hackrf := eventFields(ev)
	_, err = stmt.ExecContext(ctx, sessionID, kind, armed, capturing, centerDb, thresholdDb, above, path, errStr, rtlsdr, hackrf)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (s *SqliteStore) Events(ctx context.Context, sessionID int64) (events []*Event, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, fmt.Errorf("getting connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectEventsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Kind, &e.Armed, &e.Capturing,
			&e.CenterDb, &e.ThresholdDb, &e.Above, &e.Path, &e.Error, &e.RtlsdrPresent, &e.HackrfPresent); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}
