// Package persist implements bareclad's persistence layer (spec §4.5): the
// SQLite schema, rehydration, and the BLAKE3 hash-chain ledger. Grounded on
// the teacher's modernc.org/sqlite dependency — a pure-Go, CGO-free SQLite
// driver, the same CGO-free path the teacher itself offers as an
// alternative to its primary MDBX storage engine.
package persist

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Roenbaeck/bareclad/bcerr"
)

// Mode selects where a Persistor writes.
type Mode int

const (
	InMemory Mode = iota
	File
)

// Persistor owns the SQLite connection(s) for one database (spec §4.5).
// InMemory is a no-op: every method returns immediately without touching
// disk. Writes always serialize through mu (spec §5: "The Persistor
// serializes writes behind a single mutex").
type Persistor struct {
	mode Mode
	path string

	mu      sync.Mutex
	writeDB *sql.DB // primary connection, used for all writes; nil in InMemory mode
}

// Open opens (and, for File mode, creates if absent) the SQLite database at
// path in WAL mode with STRICT tables. For InMemory mode path is ignored.
func Open(mode Mode, path string) (*Persistor, error) {
	p := &Persistor{mode: mode, path: path}
	if mode == InMemory {
		return p, nil
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", bcerr.ErrPersistenceIO, path, err)
	}
	db.SetMaxOpenConns(1) // writer connection; readers open their own (spec §5)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", bcerr.ErrPersistenceIO, err)
	}
	p.writeDB = db
	return p, nil
}

// Close releases the underlying connection, if any.
func (p *Persistor) Close() error {
	if p.writeDB == nil {
		return nil
	}
	return p.writeDB.Close()
}

// IsInMemory reports whether this Persistor is a no-op.
func (p *Persistor) IsInMemory() bool { return p.mode == InMemory }

// readConn returns a connection to use for a single read. File mode opens a
// fresh ephemeral connection per call, so reads never share a handle across
// goroutines (spec §5). InMemory mode has no connection at all, so callers
// must not call this method in that mode (Rehydrate, VerifyOrBackfillLedger
// and VerifyLedger all early-return on IsInMemory first).
func (p *Persistor) readConn() (*sql.DB, func(), error) {
	db, err := sql.Open("sqlite", p.path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening read connection: %v", bcerr.ErrPersistenceIO, err)
	}
	return db, func() { db.Close() }, nil
}
