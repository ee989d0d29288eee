package persist

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/model"
)

// InsertThing records a newly-allocated Thing identity. InMemory mode is a
// no-op.
func (p *Persistor) InsertThing(id identity.Thing) error {
	if p.IsInMemory() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.writeDB.Exec(`INSERT OR IGNORE INTO Thing (Thing_Identity) VALUES (?)`, int64(id))
	if err != nil {
		return fmt.Errorf("%w: inserting thing %d: %v", bcerr.ErrPersistenceIO, id, err)
	}
	return nil
}

// InsertRole persists a newly-interned Role.
func (p *Persistor) InsertRole(id identity.Thing, name string, reserved bool) error {
	if p.IsInMemory() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	reservedInt := 0
	if reserved {
		reservedInt = 1
	}
	_, err := p.writeDB.Exec(
		`INSERT OR IGNORE INTO Role (Role_Identity, Role, Reserved) VALUES (?, ?, ?)`,
		int64(id), name, reservedInt,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting role %q: %v", bcerr.ErrPersistenceIO, name, err)
	}
	return nil
}

// EnsureDataTypes seeds the DataType table with every known TypeId. Called
// by database.Open on every File-mode open; rows already present are left
// as they are.
func (p *Persistor) EnsureDataTypes() error {
	if p.IsInMemory() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range model.AllTypeIds() {
		if _, err := p.writeDB.Exec(
			`INSERT OR IGNORE INTO DataType (DataType_Identity, DataType) VALUES (?, ?)`,
			int(t), t.Name(),
		); err != nil {
			return fmt.Errorf("%w: seeding data type %s: %v", bcerr.ErrPersistenceIO, t.Name(), err)
		}
	}
	return nil
}

// InsertPosit persists a newly-interned Posit and extends the hash-chain
// ledger in the same transaction (spec §4.5). appearanceSet is the
// already-serialized pipe-separated text (keeper.AppearanceSet.Serialize).
// Each posit is committed in its own transaction: an add-posit command with
// several literals commits them one by one, and a failure part-way through
// does not roll back the posits already committed.
func (p *Persistor) InsertPosit(id identity.Thing, appearanceSet string, value model.Value, t model.Time) error {
	if p.IsInMemory() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.writeDB.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning posit transaction: %v", bcerr.ErrPersistenceIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	valueText := value.String()
	timeText := t.String()
	typeId := value.TypeId()

	if _, err := tx.Exec(
		`INSERT INTO Posit (Posit_Identity, AppearanceSet, AppearingValue, ValueType_Identity, AppearanceTime) VALUES (?, ?, ?, ?, ?)`,
		int64(id), appearanceSet, valueText, int(typeId), timeText,
	); err != nil {
		return fmt.Errorf("%w: inserting posit %d: %v", bcerr.ErrPersistenceIO, id, err)
	}

	prevHash, count, err := currentLedgerHead(tx)
	if err != nil {
		return err
	}
	hash := chainHash(id, appearanceSet, typeId, valueText, timeText, prevHash)

	if _, err := tx.Exec(
		`INSERT INTO PositHash (Posit_Identity, PrevHash, Hash) VALUES (?, ?, ?)`,
		int64(id), prevHash, hash,
	); err != nil {
		return fmt.Errorf("%w: inserting ledger entry for posit %d: %v", bcerr.ErrPersistenceIO, id, err)
	}

	if _, err := tx.Exec(
		`INSERT INTO LedgerHead (Name, Hash, Count) VALUES (?, ?, ?)
		 ON CONFLICT(Name) DO UPDATE SET Hash = excluded.Hash, Count = excluded.Count`,
		ledgerName, hash, count+1,
	); err != nil {
		return fmt.Errorf("%w: updating ledger head: %v", bcerr.ErrPersistenceIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing posit %d: %v", bcerr.ErrPersistenceIO, id, err)
	}
	return nil
}

// currentLedgerHead reads the current LedgerHead row within tx. Returns
// genesisHash/0 if the ledger is empty (genesis, spec §4.5).
func currentLedgerHead(tx *sql.Tx) (string, int64, error) {
	var hash string
	var count int64
	err := tx.QueryRow(`SELECT Hash, Count FROM LedgerHead WHERE Name = ?`, ledgerName).Scan(&hash, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return genesisHash, 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("%w: reading ledger head: %v", bcerr.ErrPersistenceIO, err)
	}
	return hash, count, nil
}
