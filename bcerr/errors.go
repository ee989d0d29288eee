// Package bcerr defines bareclad's error taxonomy (spec §7) as sentinel
// values, in the style of core/state's PrunedError: a package-level
// errors.New value that call sites wrap with fmt.Errorf("%w: ...") and
// callers test with errors.Is.
package bcerr

import "errors"

var (
	ErrParseError            = errors.New("bareclad: parse error")
	ErrUnknownVariable       = errors.New("bareclad: unknown variable")
	ErrVariableKindConflict  = errors.New("bareclad: variable kind conflict")
	ErrUnknownRole           = errors.New("bareclad: unknown role")
	ErrRoleCollision         = errors.New("bareclad: role collision")
	ErrInvalidAppearance     = errors.New("bareclad: invalid appearance")
	ErrUnorderedType         = errors.New("bareclad: type does not support ordering")
	ErrOrderingTypeMismatch  = errors.New("bareclad: ordering type mismatch")
	ErrUnknownDataType       = errors.New("bareclad: unknown data type")
	ErrLedgerMismatch        = errors.New("bareclad: ledger mismatch")
	ErrPersistenceIO         = errors.New("bareclad: persistence I/O error")
	ErrCancelled             = errors.New("bareclad: cancelled")
	ErrTimeout               = errors.New("bareclad: timeout")
)
