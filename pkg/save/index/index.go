package index

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// DefaultName is the index file created inside the target directory.
const DefaultName = ".gather-index.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one indexed URL and its "<timestamp>#<file>" value.
type Entry struct {
	URL   string
	Value string
}

// Index is an open handle on the duplicate-URL index. It holds an exclusive
// advisory lock from Open until Close, so callers must keep it open only
// around the lookup and insert and never across a fetch or a file write.
type Index struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Path returns the index location for a target directory.
func Path(dir, name string) string {
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(dir, name)
}

// Open locks and opens the index at path, creating it when missing.
func Open(path string) (*Index, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIndex, "failed to lock index %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrapf(err, errors.ErrIndex, "failed to open index %s", path)
	}
	// one connection keeps the handle's statements on the same sqlite session
	db.SetMaxOpenConns(1)

	idx := &Index{db: db, lock: lock, path: path}
	if err := idx.init(); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) init() error {
	stmts := []string{
		"PRAGMA busy_timeout = 5000",
		`CREATE TABLE IF NOT EXISTS urls (
			url   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if err := retryOnBusy(func() error {
			_, err := i.db.Exec(stmt)
			return err
		}); err != nil {
			return errors.Wrapf(err, errors.ErrIndex, "failed to initialise index %s", i.path)
		}
	}
	return nil
}

// Get returns the value recorded for url.
func (i *Index) Get(url string) (string, bool, error) {
	var value string
	err := retryOnBusy(func() error {
		return i.db.QueryRowContext(context.Background(),
			"SELECT value FROM urls WHERE url = ?", url).Scan(&value)
	})
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrIndex, "failed to read index entry for %s", url)
	}
	return value, true, nil
}

// Put records value for url, replacing any previous value.
func (i *Index) Put(url, value string) error {
	err := retryOnBusy(func() error {
		_, err := i.db.ExecContext(context.Background(),
			"INSERT INTO urls (url, value) VALUES (?, ?) ON CONFLICT(url) DO UPDATE SET value = excluded.value",
			url, value)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrIndex, "failed to record index entry for %s", url)
	}
	return nil
}

// Entries lists every indexed URL in URL order.
func (i *Index) Entries() ([]Entry, error) {
	rows, err := i.db.Query("SELECT url, value FROM urls ORDER BY url")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIndex, "failed to list index")
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URL, &e.Value); err != nil {
			return nil, errors.Wrap(err, errors.ErrIndex, "failed to scan index entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database and releases the lock.
func (i *Index) Close() error {
	dbErr := i.db.Close()
	lockErr := i.lock.Unlock()
	if dbErr != nil {
		return errors.Wrap(dbErr, errors.ErrIndex, "failed to close index")
	}
	if lockErr != nil {
		return errors.Wrap(lockErr, errors.ErrIndex, "failed to unlock index")
	}
	return nil
}

// CheckAndRecord opens the index at path, and either reports the value
// already stored for url or records value for it. The index is closed again
// before returning.
func CheckAndRecord(path, url, value string) (existing string, found bool, err error) {
	idx, err := Open(path)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	existing, found, err = idx.Get(url)
	if err != nil || found {
		return existing, found, err
	}
	return "", false, idx.Put(url, value)
}

// FormatValue builds the stored value for a file saved at t.
func FormatValue(t time.Time, file string) string {
	return fmt.Sprintf("%d#%s", t.Unix(), file)
}

// ParseValue splits a stored value into its timestamp and file name.
func ParseValue(value string) (time.Time, string, error) {
	ts, file, ok := strings.Cut(value, "#")
	if !ok {
		return time.Time{}, "", errors.Newf(errors.ErrIndex, "malformed index value '%s'", value)
	}
	var sec int64
	if _, err := fmt.Sscanf(ts, "%d", &sec); err != nil {
		return time.Time{}, "", errors.Wrapf(err, errors.ErrIndex, "malformed index timestamp '%s'", ts)
	}
	return time.Unix(sec, 0), file, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if stderrors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		time.Sleep(delay)
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
