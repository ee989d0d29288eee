package persist

// schema holds the bit-exact SQLite schema from spec §4.5/§6: STRICT
// tables, WAL mode. Table and column names are part of the external
// contract and must not be renamed.
const schema = `
CREATE TABLE IF NOT EXISTS Thing (
	Thing_Identity INTEGER PRIMARY KEY
) STRICT;

CREATE TABLE IF NOT EXISTS Role (
	Role_Identity INTEGER PRIMARY KEY,
	Role TEXT UNIQUE NOT NULL,
	Reserved INTEGER NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS DataType (
	DataType_Identity INTEGER PRIMARY KEY,
	DataType TEXT UNIQUE NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS Posit (
	Posit_Identity INTEGER PRIMARY KEY,
	AppearanceSet TEXT NOT NULL,
	AppearingValue TEXT NOT NULL,
	ValueType_Identity INTEGER NOT NULL,
	AppearanceTime TEXT NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS PositHash (
	Posit_Identity INTEGER PRIMARY KEY,
	PrevHash TEXT NOT NULL,
	Hash TEXT NOT NULL
) STRICT;

CREATE TABLE IF NOT EXISTS LedgerHead (
	Name TEXT PRIMARY KEY,
	Hash TEXT NOT NULL,
	Count INTEGER NOT NULL
) STRICT;
`

// genesisHash is the 64 zero-character hash that seeds the ledger (spec
// §4.5/§6).
const genesisHash = "00000000" + "00000000" + "00000000" + "00000000" + "00000000" + "00000000" + "00000000" + "00000000"

// ledgerName is the fixed LedgerHead row name bareclad maintains.
const ledgerName = "PositLedger"
