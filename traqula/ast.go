// Package traqula implements bareclad's declarative DSL (spec §4.6/§6): a
// hand-written recursive-descent parser and an executor over the database
// facade. Grammar and executor semantics are the parts of the repository
// spec.md frames as the fixed, external contract; the parser itself is the
// one supplemented piece (SPEC_FULL.md §C) needed to run scripts end to end.
package traqula

import "github.com/Roenbaeck/bareclad/model"

// Command is one statement of a parsed script: AddRoles, AddPosits, or
// Search.
type Command interface {
	isCommand()
}

// AddRoles declares one or more role names (fresh or already-known; role
// declaration is idempotent).
type AddRoles struct {
	Names []string
}

func (AddRoles) isCommand() {}

// ThingRef names how a posit literal's appearance resolves its Thing: a
// fresh "+var" allocates a new Thing bound to var, a bare "var" recalls an
// already-bound variable.
type ThingRef struct {
	Name  string
	Fresh bool
}

// AppearanceLiteral is one "(thing_ref, role)" pair in a posit literal.
type AppearanceLiteral struct {
	Thing ThingRef
	Role  string
}

// PositLiteral is one literal of an "add posit" command.
type PositLiteral struct {
	OuterVar    string // "" if the literal has no outer "+var" binding
	Appearances []AppearanceLiteral
	Value       model.Value
	Time        model.Time
}

// AddPosits interns one or more posit literals.
type AddPosits struct {
	Literals []PositLiteral
}

func (AddPosits) isCommand() {}

// ThingSlot is an appearance pattern's thing position: a wildcard "*", a
// fresh "+var", a recall "var", or a recall-only union "v1|v2|...".
type ThingSlot struct {
	Wildcard bool
	Fresh    bool
	Names    []string // len 1 for a plain var; >1 for a union (always recall)
}

// AppearancePattern is one "(thing_slot, role_or_wildcard)" pair in a search
// pattern's appearance set.
type AppearancePattern struct {
	Thing        ThingSlot
	Role         string
	RoleWildcard bool
}

// AppearanceSetPattern is a search pattern's appearance-set position: either
// a full wildcard "*" or an explicit list of AppearancePatterns.
type AppearanceSetPattern struct {
	Wildcard    bool
	Appearances []AppearancePattern
}

// ValueSlot is a search pattern's value position.
type ValueSlot struct {
	Wildcard bool
	VarName  string
	Fresh    bool
	Literal  model.Value // non-nil iff neither Wildcard nor VarName is set
}

// TimeSlot is a search pattern's time position.
type TimeSlot struct {
	Wildcard bool
	VarName  string
	Fresh    bool
	Literal  *model.Time
}

// TimeRef is an "as of" reference: either a literal/constant Time or a
// previously-bound time variable.
type TimeRef struct {
	VarName string
	Literal *model.Time
}

// PositPattern is one clause of a "search" command.
type PositPattern struct {
	OuterVar      string // "" if the pattern has no outer "+var" binding on the posit identity
	AppearanceSet AppearanceSetPattern
	Value         ValueSlot
	Time          TimeSlot
	AsOf          *TimeRef
}

// Predicate is one "where" conjunct: left is always a variable; right is
// either another variable or a literal.
type Predicate struct {
	LeftVar    string
	Op         string // "<", "<=", ">", ">=", "=", "=="
	RightVar   string
	RightIsVar bool
	RightValue model.Value
	RightTime  *model.Time
}

// Search is a "search" command.
type Search struct {
	Clauses []PositPattern
	Where   []Predicate
	Return  []string
	AsOf    *TimeRef // script-level "as of" shared by clauses that don't name their own
	Limit   *uint64
}

func (Search) isCommand() {}

// Script is a parsed sequence of commands.
type Script struct {
	Commands []Command
}
