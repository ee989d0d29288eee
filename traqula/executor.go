package traqula

import (
	"context"
	"fmt"
	"sort"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/database"
	"github.com/Roenbaeck/bareclad/identity"
	"github.com/Roenbaeck/bareclad/index"
	"github.com/Roenbaeck/bareclad/keeper"
	"github.com/Roenbaeck/bareclad/model"
)

// varKind tags what a script-scoped variable denotes, per spec §4.6 step 2:
// an Identity (a Thing, read off an appearance's role), a Value, or a Time.
// Mixing kinds for the same name across a script is a VariableKindConflict.
type varKind int

const (
	kindIdentity varKind = iota
	kindValue
	kindTime
)

// bindGroup is the shared candidate-Posit set behind one or more variables
// that were all established by the same clause — its outer posit-identity
// variable, its value variable, its time variable, and any appearance's
// identity variable all denote a row of the SAME matching posit, so they
// must stay correlated by Posit identity rather than be treated as
// independent sets once later steps (a "where" predicate, a later reuse)
// narrow one of them.
type bindGroup struct {
	candidates *index.Set
}

// binding is one script-scoped variable. For kindValue and kindTime,
// grp.candidates is always a set of Posit identities and the concrete cell
// is read straight off that Posit's Value/Time. For kindIdentity, direct
// tells the executor how to turn a member of grp.candidates into a
// concrete Thing: direct bindings (an add-posit "+var", or a search
// pattern's outer "+var") hold Thing/Posit identities themselves;
// role-extracted bindings (an appearance's thing slot) hold Posit
// identities plus roleId naming which role to read the Thing out of.
type binding struct {
	kind   varKind
	direct bool
	roleId identity.Thing
	grp    *bindGroup
}

func (b *binding) candidates() *index.Set { return b.grp.candidates }

// Executor runs a parsed Script against a Database, threading one
// script-scoped variable environment across every command (spec §4.6: a
// variable bound by an earlier "add posit" is still in scope for a later
// "search" in the same script).
type Executor struct {
	db *database.Database
}

func New(db *database.Database) *Executor {
	return &Executor{db: db}
}

// Run executes every command in script in order and returns one ResultSet
// per "search" command (AddRoles/AddPosits contribute no result).
func (e *Executor) Run(script *Script) ([]*ResultSet, error) {
	return e.RunContext(context.Background(), script)
}

// RunContext is Run under a cancellable context (spec §4.7): cancellation is
// cooperative and coarse, checked between top-level commands and, within a
// "search", between clauses — never mid-clause. Any termination of ctx
// (explicit Cancel or expired deadline alike) is reported as
// bcerr.ErrCancelled; package query additionally reports a terminal
// bcerr.ErrTimeout when it was specifically a deadline that fired.
func (e *Executor) RunContext(ctx context.Context, script *Script) ([]*ResultSet, error) {
	env := make(map[string]*binding)
	var results []*ResultSet
	for _, cmd := range script.Commands {
		if err := ctxErr(ctx); err != nil {
			return results, err
		}
		switch c := cmd.(type) {
		case AddRoles:
			if err := e.execAddRoles(c); err != nil {
				return results, err
			}
		case AddPosits:
			if err := e.execAddPosits(c, env); err != nil {
				return results, err
			}
		case Search:
			rs, err := e.execSearch(ctx, c, env)
			if err != nil {
				return results, err
			}
			results = append(results, rs)
		default:
			return results, fmt.Errorf("traqula: unknown command type %T", cmd)
		}
	}
	return results, nil
}

// ctxErr reports ctx's termination as bcerr.ErrCancelled — the cooperative
// stop signal every command/clause boundary checks for, regardless of
// whether an explicit Cancel or an expired deadline caused it. Submit
// distinguishes a timeout specifically and reports bcerr.ErrTimeout after
// this Cancelled (spec §4.7: "timeouts fire Cancelled followed by Timeout").
func ctxErr(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", bcerr.ErrCancelled, ctx.Err())
}

func (e *Executor) execAddRoles(c AddRoles) error {
	for _, name := range c.Names {
		if _, err := e.db.CreateRole(name, false); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) execAddPosits(c AddPosits, env map[string]*binding) error {
	for _, lit := range c.Literals {
		apps := make([]*keeper.Appearance, 0, len(lit.Appearances))
		for _, al := range lit.Appearances {
			thing, err := e.resolveThingRef(al.Thing, env)
			if err != nil {
				return err
			}
			role, ok := e.db.Roles().ByName(al.Role)
			if !ok {
				return fmt.Errorf("%w: %q", bcerr.ErrUnknownRole, al.Role)
			}
			ap, err := e.db.CreateAppearance(thing, role)
			if err != nil {
				return err
			}
			apps = append(apps, ap)
		}
		set, err := e.db.CreateAppearanceSet(apps)
		if err != nil {
			return err
		}
		posit, err := e.db.CreatePosit(set, lit.Value, lit.Time.Resolve())
		if err != nil {
			return err
		}
		if lit.OuterVar != "" {
			env[lit.OuterVar] = &binding{kind: kindIdentity, direct: true, grp: &bindGroup{candidates: index.SetOf(posit.Id)}}
		}
	}
	return nil
}

// resolveThingRef allocates a fresh Thing (binding it to ref.Name) or
// recalls an already-bound one, per the "+var"/"var" distinction in posit
// literals (spec §6).
func (e *Executor) resolveThingRef(ref ThingRef, env map[string]*binding) (identity.Thing, error) {
	if ref.Fresh {
		thing, err := e.db.CreateThing()
		if err != nil {
			return 0, err
		}
		env[ref.Name] = &binding{kind: kindIdentity, direct: true, grp: &bindGroup{candidates: index.SetOf(thing)}}
		return thing, nil
	}
	b, ok := env[ref.Name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, ref.Name)
	}
	if b.kind != kindIdentity {
		return 0, fmt.Errorf("%w: %q", bcerr.ErrVariableKindConflict, ref.Name)
	}
	things := e.resolveIdentities(b)
	if len(things) != 1 {
		return 0, fmt.Errorf("%w: %q must resolve to exactly one thing, found %d", bcerr.ErrVariableKindConflict, ref.Name, len(things))
	}
	return things[0], nil
}

// resolveIdentities turns an identity binding's candidate set into the
// distinct, ascending Thing values it denotes.
func (e *Executor) resolveIdentities(b *binding) []identity.Thing {
	ids := b.candidates().ToSlice()
	if b.direct {
		return ids
	}
	seen := make(map[identity.Thing]bool, len(ids))
	out := make([]identity.Thing, 0, len(ids))
	for _, positId := range ids {
		thing, ok := e.thingInRoleForPosit(positId, b.roleId)
		if !ok || seen[thing] {
			continue
		}
		seen[thing] = true
		out = append(out, thing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e *Executor) thingInRoleForPosit(positId identity.Thing, roleId identity.Thing) (identity.Thing, bool) {
	asId, ok := e.db.Index().PositToAppearanceSet(positId)
	if !ok {
		return 0, false
	}
	as, ok := e.db.AppearanceSets().ById(asId)
	if !ok {
		return 0, false
	}
	return as.ThingInRole(roleId)
}

// execSearch runs every clause of a search command, joins them through the
// shared variable environment, applies "where", and projects "return"
// (spec §4.6 steps 1-6).
func (e *Executor) execSearch(ctx context.Context, c Search, env map[string]*binding) (*ResultSet, error) {
	for _, pat := range c.Clauses {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		cands, grp, err := e.execClause(pat, c.AsOf, env)
		if err != nil {
			return nil, err
		}
		if pat.OuterVar != "" {
			if existing, ok := env[pat.OuterVar]; ok {
				if existing.kind != kindIdentity {
					return nil, fmt.Errorf("%w: %q", bcerr.ErrVariableKindConflict, pat.OuterVar)
				}
				existing.grp.candidates = existing.grp.candidates.And(cands)
			} else {
				if grp == nil {
					grp = &bindGroup{candidates: cands}
				}
				env[pat.OuterVar] = &binding{kind: kindIdentity, direct: true, grp: grp}
			}
		}
	}
	for _, pred := range c.Where {
		if err := e.applyPredicate(pred, env); err != nil {
			return nil, err
		}
	}
	return e.projectResult(c, env)
}

// execClause resolves one search pattern to its surviving candidate Posit
// set, in the order spec §4.6 step 1-5 describes: seed from the role
// signature, filter by already-bound thing/value/time slots, reduce by
// "as of", then establish any first-occurrence variable bindings. The
// returned bindGroup (nil if the clause introduced no fresh variable) is
// the shared candidate set every variable first bound by this clause
// shares, so a caller-bound outer variable can join the same group.
func (e *Executor) execClause(pat PositPattern, scriptAsOf *TimeRef, env map[string]*binding) (*index.Set, *bindGroup, error) {
	candidates, err := e.seedClauseCandidates(pat.AppearanceSet)
	if err != nil {
		return nil, nil, err
	}

	if !pat.AppearanceSet.Wildcard {
		for _, apPat := range pat.AppearanceSet.Appearances {
			candidates, err = e.filterByThingSlot(candidates, apPat, env)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	if pat.Value.Literal != nil {
		candidates = e.filterByValueLiteral(candidates, pat.Value.Literal)
	}
	if pat.Time.Literal != nil {
		candidates = e.filterByTimeLiteral(candidates, *pat.Time.Literal)
	}

	asOf := pat.AsOf
	if asOf == nil {
		asOf = scriptAsOf
	}
	if asOf != nil {
		candidates, err = e.reduceAsOf(candidates, asOf, env)
		if err != nil {
			return nil, nil, err
		}
	}

	var grp *bindGroup
	freshGroup := func() *bindGroup {
		if grp == nil {
			grp = &bindGroup{candidates: candidates}
		}
		return grp
	}

	if pat.Value.VarName != "" {
		if err := e.bindFresh(env, pat.Value.VarName, kindValue, false, 0, freshGroup()); err != nil {
			return nil, nil, err
		}
	}
	if pat.Time.VarName != "" {
		if err := e.bindFresh(env, pat.Time.VarName, kindTime, false, 0, freshGroup()); err != nil {
			return nil, nil, err
		}
	}

	if !pat.AppearanceSet.Wildcard {
		for _, apPat := range pat.AppearanceSet.Appearances {
			if apPat.Thing.Wildcard || len(apPat.Thing.Names) != 1 {
				continue
			}
			name := apPat.Thing.Names[0]
			if _, exists := env[name]; exists {
				continue
			}
			if apPat.RoleWildcard {
				continue
			}
			role, ok := e.db.Roles().ByName(apPat.Role)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownRole, apPat.Role)
			}
			if err := e.bindFresh(env, name, kindIdentity, false, role.Id, freshGroup()); err != nil {
				return nil, nil, err
			}
		}
	}

	return candidates, grp, nil
}

func (e *Executor) seedClauseCandidates(asp AppearanceSetPattern) (*index.Set, error) {
	if asp.Wildcard {
		return e.db.Index().AllPositIds(), nil
	}
	var roleSets []*index.Set
	for _, apPat := range asp.Appearances {
		if apPat.RoleWildcard {
			continue
		}
		role, ok := e.db.Roles().ByName(apPat.Role)
		if !ok {
			return nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownRole, apPat.Role)
		}
		roleSets = append(roleSets, e.db.Index().RoleToPosit(role.Id))
	}
	if len(roleSets) == 0 {
		return e.db.Index().AllPositIds(), nil
	}
	return index.Intersect(roleSets...), nil
}

// filterByThingSlot narrows candidates to posits whose appearance in
// apPat's role matches an already-bound identity variable (a bare recall,
// or a recall-only union "v1|v2"). A wildcard, or a name with no existing
// binding yet, passes candidates through unchanged — first-occurrence
// binding is established later, once the clause's full constraint set is
// known.
func (e *Executor) filterByThingSlot(candidates *index.Set, apPat AppearancePattern, env map[string]*binding) (*index.Set, error) {
	if apPat.Thing.Wildcard {
		return candidates, nil
	}
	names := apPat.Thing.Names
	if len(names) == 0 {
		return candidates, nil
	}
	allowed := make(map[identity.Thing]bool)
	anyBound := false
	for _, name := range names {
		b, ok := env[name]
		if !ok {
			if len(names) > 1 {
				return nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, name)
			}
			continue
		}
		if b.kind != kindIdentity {
			return nil, fmt.Errorf("%w: %q", bcerr.ErrVariableKindConflict, name)
		}
		anyBound = true
		for _, t := range e.resolveIdentities(b) {
			allowed[t] = true
		}
	}
	if !anyBound {
		return candidates, nil
	}
	if apPat.RoleWildcard {
		out := index.NewSet()
		for _, positId := range candidates.ToSlice() {
			asId, ok := e.db.Index().PositToAppearanceSet(positId)
			if !ok {
				continue
			}
			as, ok := e.db.AppearanceSets().ById(asId)
			if !ok {
				continue
			}
			for _, ap := range as.Appearances {
				if allowed[ap.ThingId] {
					out.Add(positId)
					break
				}
			}
		}
		return out, nil
	}
	role, ok := e.db.Roles().ByName(apPat.Role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownRole, apPat.Role)
	}
	out := index.NewSet()
	for _, positId := range candidates.ToSlice() {
		thing, ok := e.thingInRoleForPosit(positId, role.Id)
		if ok && allowed[thing] {
			out.Add(positId)
		}
	}
	return out, nil
}

func (e *Executor) filterByValueLiteral(candidates *index.Set, lit model.Value) *index.Set {
	out := index.NewSet()
	for _, id := range candidates.ToSlice() {
		posit, ok := e.db.Posits().ById(id)
		if ok && model.EqualValues(posit.Value, lit) {
			out.Add(id)
		}
	}
	return out
}

func (e *Executor) filterByTimeLiteral(candidates *index.Set, t model.Time) *index.Set {
	t = t.Resolve()
	out := index.NewSet()
	for _, id := range candidates.ToSlice() {
		posit, ok := e.db.Posits().ById(id)
		if ok && posit.Time.Equal(t) {
			out.Add(id)
		}
	}
	return out
}

// reduceAsOf keeps, per distinct AppearanceSet represented in candidates,
// only the posit with the greatest Time not after the cutoff (spec §4.6
// step 4 / worked example S3). A TimeRef naming a bound variable reduces
// once per distinct time that variable's candidates carry, unioning the
// results — the "greatest posit <= t" rule applied across every row of the
// variable's current binding.
func (e *Executor) reduceAsOf(candidates *index.Set, ref *TimeRef, env map[string]*binding) (*index.Set, error) {
	var cutoffs []model.Time
	if ref.Literal != nil {
		cutoffs = []model.Time{ref.Literal.Resolve()}
	} else {
		b, ok := env[ref.VarName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, ref.VarName)
		}
		if b.kind != kindTime {
			return nil, fmt.Errorf("%w: %q", bcerr.ErrVariableKindConflict, ref.VarName)
		}
		seen := make(map[string]bool)
		for _, positId := range b.candidates().ToSlice() {
			posit, ok := e.db.Posits().ById(positId)
			if !ok {
				continue
			}
			t := posit.Time.Resolve()
			key := t.String()
			if !seen[key] {
				seen[key] = true
				cutoffs = append(cutoffs, t)
			}
		}
	}
	if len(cutoffs) == 0 {
		return index.NewSet(), nil
	}

	groups := make(map[identity.Thing][]identity.Thing)
	for _, id := range candidates.ToSlice() {
		asId, ok := e.db.Index().PositToAppearanceSet(id)
		if !ok {
			continue
		}
		groups[asId] = append(groups[asId], id)
	}

	out := index.NewSet()
	for _, cutoff := range cutoffs {
		for _, ids := range groups {
			var best identity.Thing
			var bestTime model.Time
			found := false
			for _, id := range ids {
				posit, ok := e.db.Posits().ById(id)
				if !ok {
					continue
				}
				if posit.Time.Compare(cutoff) > 0 {
					continue
				}
				if !found || posit.Time.Compare(bestTime) > 0 {
					found = true
					best = id
					bestTime = posit.Time
				}
			}
			if found {
				out.Add(best)
			}
		}
	}
	return out, nil
}

// bindFresh establishes name's binding on its first occurrence (sharing
// grp, the clause-wide correlation group), or intersects grp's candidates
// into name's existing binding on reuse — the script-wide join described
// in spec §4.6 step 2.
func (e *Executor) bindFresh(env map[string]*binding, name string, kind varKind, direct bool, roleId identity.Thing, grp *bindGroup) error {
	existing, ok := env[name]
	if !ok {
		env[name] = &binding{kind: kind, direct: direct, roleId: roleId, grp: grp}
		return nil
	}
	if existing.kind != kind {
		return fmt.Errorf("%w: %q", bcerr.ErrVariableKindConflict, name)
	}
	existing.grp.candidates = existing.grp.candidates.And(grp.candidates)
	return nil
}

// applyPredicate evaluates one "where" conjunct (spec §4.6 step 5),
// narrowing the candidate set(s) of the variable(s) involved.
func (e *Executor) applyPredicate(pred Predicate, env map[string]*binding) error {
	left, ok := env[pred.LeftVar]
	if !ok {
		return fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, pred.LeftVar)
	}
	if left.kind == kindIdentity {
		return fmt.Errorf("%w: identity variable %q does not support comparison", bcerr.ErrOrderingTypeMismatch, pred.LeftVar)
	}
	leftValueOf := e.cellValueFunc(left)

	if pred.RightIsVar {
		right, ok := env[pred.RightVar]
		if !ok {
			return fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, pred.RightVar)
		}
		if right.kind == kindIdentity {
			return fmt.Errorf("%w: identity variable %q does not support comparison", bcerr.ErrOrderingTypeMismatch, pred.RightVar)
		}
		rightValueOf := e.cellValueFunc(right)

		rightValues := make([]model.Value, 0, right.candidates().Cardinality())
		for _, id := range right.candidates().ToSlice() {
			if v, ok := rightValueOf(id); ok {
				rightValues = append(rightValues, v)
			}
		}
		leftValues := make([]model.Value, 0, left.candidates().Cardinality())
		for _, id := range left.candidates().ToSlice() {
			if v, ok := leftValueOf(id); ok {
				leftValues = append(leftValues, v)
			}
		}

		newLeft := index.NewSet()
		for _, lid := range left.candidates().ToSlice() {
			lv, ok := leftValueOf(lid)
			if !ok {
				continue
			}
			for _, rv := range rightValues {
				matched, err := predicateMatches(lv, rv, pred.Op)
				if err != nil {
					return err
				}
				if matched {
					newLeft.Add(lid)
					break
				}
			}
		}
		newRight := index.NewSet()
		for _, rid := range right.candidates().ToSlice() {
			rv, ok := rightValueOf(rid)
			if !ok {
				continue
			}
			for _, lv := range leftValues {
				matched, err := predicateMatches(lv, rv, pred.Op)
				if err != nil {
					return err
				}
				if matched {
					newRight.Add(rid)
					break
				}
			}
		}
		left.grp.candidates = newLeft
		right.grp.candidates = newRight
		return nil
	}

	var rv model.Value
	if pred.RightTime != nil {
		rv = model.TimeValue{Time: *pred.RightTime}
	} else {
		rv = pred.RightValue
	}
	newLeft := index.NewSet()
	for _, lid := range left.candidates().ToSlice() {
		lv, ok := leftValueOf(lid)
		if !ok {
			continue
		}
		matched, err := predicateMatches(lv, rv, pred.Op)
		if err != nil {
			return err
		}
		if matched {
			newLeft.Add(lid)
		}
	}
	left.grp.candidates = newLeft
	return nil
}

func (e *Executor) cellValueFunc(b *binding) func(identity.Thing) (model.Value, bool) {
	return func(positId identity.Thing) (model.Value, bool) {
		posit, ok := e.db.Posits().ById(positId)
		if !ok {
			return nil, false
		}
		if b.kind == kindTime {
			return model.TimeValue{Time: posit.Time}, true
		}
		return posit.Value, true
	}
}

func predicateMatches(lv, rv model.Value, op string) (bool, error) {
	if op == "=" || op == "==" {
		return model.EqualValues(lv, rv), nil
	}
	cmp, err := model.CompareOrdered(lv, rv)
	if err != nil {
		return false, err
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("traqula: unsupported operator %q", op)
	}
}

type projectedCell struct {
	repr string
	typ  string
}

// projectResult builds the final ResultSet (spec §4.6 step 6). Returned
// variables bound by the same bindGroup (i.e. established together by one
// clause) are zipped row-for-row by their shared Posit identity; variables
// from independent groups are combined by cartesian product across their
// own row lists.
func (e *Executor) projectResult(c Search, env map[string]*binding) (*ResultSet, error) {
	names := c.Return
	if len(names) == 0 {
		return &ResultSet{}, nil
	}
	bindings := make([]*binding, len(names))
	for i, name := range names {
		b, ok := env[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", bcerr.ErrUnknownVariable, name)
		}
		bindings[i] = b
	}

	type group struct {
		grp  *bindGroup
		idxs []int
		ids  []identity.Thing
	}
	var groups []*group
	for i, b := range bindings {
		found := -1
		for gi, g := range groups {
			if g.grp == b.grp {
				found = gi
				break
			}
		}
		if found == -1 {
			groups = append(groups, &group{grp: b.grp, ids: b.grp.candidates.ToSlice()})
			found = len(groups) - 1
		}
		groups[found].idxs = append(groups[found].idxs, i)
	}

	groupRows := make([][][]projectedCell, len(groups))
	for gi, g := range groups {
		rows := make([][]projectedCell, 0, len(g.ids))
		for _, id := range g.ids {
			row := make([]projectedCell, len(g.idxs))
			ok := true
			for ci, nameIdx := range g.idxs {
				repr, typ, found := e.cellFor(bindings[nameIdx], id)
				if !found {
					ok = false
					break
				}
				row[ci] = projectedCell{repr: repr, typ: typ}
			}
			if ok {
				rows = append(rows, row)
			}
		}
		groupRows[gi] = rows
	}

	combos := [][]projectedCell{{}}
	for _, rows := range groupRows {
		var next [][]projectedCell
		for _, combo := range combos {
			for _, row := range rows {
				merged := make([]projectedCell, 0, len(combo)+len(row))
				merged = append(merged, combo...)
				merged = append(merged, row...)
				next = append(next, merged)
			}
		}
		combos = next
	}

	var flatOrder []int
	for _, g := range groups {
		flatOrder = append(flatOrder, g.idxs...)
	}

	limited := false
	if c.Limit != nil && uint64(len(combos)) > *c.Limit {
		combos = combos[:*c.Limit]
		limited = true
	}

	rows := make([][]string, len(combos))
	rowTypes := make([][]string, len(combos))
	for ri, combo := range combos {
		row := make([]string, len(names))
		types := make([]string, len(names))
		for ci, flatIdx := range flatOrder {
			row[flatIdx] = combo[ci].repr
			types[flatIdx] = combo[ci].typ
		}
		rows[ri] = row
		rowTypes[ri] = types
	}

	return &ResultSet{
		Columns:  names,
		RowTypes: rowTypes,
		Rows:     rows,
		RowCount: len(rows),
		Limited:  limited,
	}, nil
}

func (e *Executor) cellFor(b *binding, id identity.Thing) (repr string, typ string, ok bool) {
	switch b.kind {
	case kindIdentity:
		if b.direct {
			return id.String(), "Identity", true
		}
		thing, found := e.thingInRoleForPosit(id, b.roleId)
		if !found {
			return "", "", false
		}
		return thing.String(), "Identity", true
	case kindValue:
		posit, found := e.db.Posits().ById(id)
		if !found {
			return "", "", false
		}
		return posit.Value.String(), posit.Value.TypeId().Name(), true
	case kindTime:
		posit, found := e.db.Posits().ById(id)
		if !found {
			return "", "", false
		}
		return posit.Time.String(), "Time", true
	default:
		return "", "", false
	}
}

