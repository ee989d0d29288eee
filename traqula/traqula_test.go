package traqula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/database"
	"github.com/Roenbaeck/bareclad/model"
	"github.com/Roenbaeck/bareclad/persist"
)

// Invariant 7 — "as of" idempotence: reducing an already-reduced candidate
// set by the same cutoff again must not change it further.
func TestReduceAsOfIdempotent(t *testing.T) {
	db := newDB(t)
	runScript(t, db, `
		add role name;
		add posit [{(+p, name)}, "A", '1990-01-01'], [{(p, name)}, "B", '2000-01-01'];
	`)

	exec := New(db)
	env := make(map[string]*binding)
	candidates, err := exec.seedClauseCandidates(AppearanceSetPattern{Wildcard: true})
	require.NoError(t, err)

	cutoff, err := model.ParseTime("2023-01-01")
	require.NoError(t, err)
	once, err := exec.reduceAsOf(candidates, &TimeRef{Literal: &cutoff}, env)
	require.NoError(t, err)
	twice, err := exec.reduceAsOf(once, &TimeRef{Literal: &cutoff}, env)
	require.NoError(t, err)

	require.ElementsMatch(t, once.ToSlice(), twice.ToSlice())
}

// Invariant 8 — WHERE ordering discipline: ordering predicates on String
// values are rejected, not silently coerced.
func TestSearchWhereStringOrderingRejected(t *testing.T) {
	db := newDB(t)
	script, err := Parse(`
		add role name;
		add posit [{(+p, name)}, "Alice", '2020-01-01'];
		search [{(*, name)}, +n, *] where n > "A" return n;
	`)
	require.NoError(t, err)
	_, err = New(db).Run(script)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrUnorderedType))
}

func newDB(t *testing.T) *database.Database {
	t.Helper()
	p, err := persist.Open(persist.InMemory, "")
	require.NoError(t, err)
	db, err := database.Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func runScript(t *testing.T, db *database.Database, src string) []*ResultSet {
	t.Helper()
	script, err := Parse(src)
	require.NoError(t, err)
	results, err := New(db).Run(script)
	require.NoError(t, err)
	return results
}

func TestParseAddRole(t *testing.T) {
	script, err := Parse("add role name, age;")
	require.NoError(t, err)
	require.Len(t, script.Commands, 1)
	roles, ok := script.Commands[0].(AddRoles)
	require.True(t, ok)
	require.Equal(t, []string{"name", "age"}, roles.Names)
}

func TestParseAddPositOuterBinding(t *testing.T) {
	_, err := Parse(`add posit [+p [{(+t, name)}, "Alice", '2023-01-01']];`)
	require.Error(t, err) // outer "+var" must precede the brackets, not sit inside them

	script, err := Parse(`add posit +p[{(+t, name)}, "Alice", '2023-01-01'];`)
	require.NoError(t, err)
	require.Len(t, script.Commands, 1)
	lit := script.Commands[0].(AddPosits).Literals[0]
	require.Equal(t, "p", lit.OuterVar)
	require.Equal(t, "t", lit.Appearances[0].Thing.Name)
	require.True(t, lit.Appearances[0].Thing.Fresh)
}

// S1 — declare, posit, search by role.
func TestSearchByRole(t *testing.T) {
	db := newDB(t)
	results := runScript(t, db, `
		add role name;
		add posit [{(+p, name)}, "Alice", '2023-01-01'];
		search [{(*, name)}, +n, *] return n;
	`)
	require.Len(t, results, 1)
	rs := results[0]
	require.Equal(t, []string{"n"}, rs.Columns)
	require.Equal(t, [][]string{{"Alice"}}, rs.Rows)
	require.Equal(t, [][]string{{"String"}}, rs.RowTypes)
	require.False(t, rs.Limited)
}

// S2 — time filter.
func TestSearchWhereTimeFilter(t *testing.T) {
	db := newDB(t)
	results := runScript(t, db, `
		add role name;
		add posit [{(+p, name)}, "A", '1990-01-01'], [{(p, name)}, "B", '2000-01-01'];
		search [{(*, name)}, +n, +t] where t <= '1999-12-31' return n, t;
	`)
	require.Len(t, results, 1)
	rs := results[0]
	require.Equal(t, []string{"n", "t"}, rs.Columns)
	require.Equal(t, [][]string{{"A", "1990-01-01"}}, rs.Rows)
}

// S3 — union-of-recall with as-of.
func TestSearchUnionRecallAsOf(t *testing.T) {
	db := newDB(t)
	results := runScript(t, db, `
		add role wife, husband, name;
		add posit [{(+w, wife), (+h, husband)}, "married", '2004-06-19'],
		          [{(w, name)}, "Bella Trix", '1972-12-13'],
		          [{(w, name)}, "Bella Bald", '2024-05-29'];
		search [{(w, wife), (h, husband)}, "married", +mt] as of @NOW,
		       [{(w|h, name)}, +n, *] as of mt
		return n, mt;
	`)
	require.Len(t, results, 1)
	rs := results[0]
	require.Equal(t, []string{"n", "mt"}, rs.Columns)
	require.Equal(t, [][]string{{"Bella Trix", "2004-06-19"}}, rs.Rows)
}

// S4 — type mismatch in WHERE.
func TestSearchWhereTypeMismatch(t *testing.T) {
	db := newDB(t)
	script, err := Parse(`
		add role age;
		add posit [{(+p, age)}, 30, '2020-01-01'];
		search [{(*, age)}, +a, *] where a > "young" return a;
	`)
	require.NoError(t, err)
	_, err = New(db).Run(script)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrOrderingTypeMismatch))
}

// S6 — limit.
func TestSearchLimitTruncates(t *testing.T) {
	db := newDB(t)
	script, err := Parse("add role name;")
	require.NoError(t, err)
	_, err = New(db).Run(script)
	require.NoError(t, err)

	executor := New(db)
	for i := 0; i < 10; i++ {
		lit := `add posit [{(+p, name)}, "N", '2020-01-01'];`
		sc, err := Parse(lit)
		require.NoError(t, err)
		_, err = executor.Run(sc)
		require.NoError(t, err)
	}

	sc, err := Parse(`search [{(*, name)}, n, *] return n limit 3;`)
	require.NoError(t, err)
	results, err := executor.Run(sc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	rs := results[0]
	require.True(t, rs.Limited)
	require.Len(t, rs.Rows, 3)
}

// JSON value literals must round-trip through add posit / search the same
// way any other value variant does (spec §3's JSON Value variant).
func TestSearchJSONValueRoundTrip(t *testing.T) {
	db := newDB(t)
	results := runScript(t, db, `
		add role tag;
		add posit [{(+p, tag)}, {"a":1,"b":[2,3]}, '2020-01-01'];
		search [{(*, tag)}, +v, *] return v;
	`)
	require.Len(t, results, 1)
	rs := results[0]
	require.Equal(t, []string{"v"}, rs.Columns)
	require.Equal(t, [][]string{{`{"a":1,"b":[2,3]}`}}, rs.Rows)
	require.Equal(t, [][]string{{"JSON"}}, rs.RowTypes)
}

// A JSON array literal in value position must parse the same way an object
// does; this exercises scanJSON's '[' branch, which is distinct from the
// posit literal's own outer '[' bracket.
func TestParseAddPositJSONArrayValue(t *testing.T) {
	script, err := Parse(`add posit [{(+p, tag)}, [1, 2, "three"], '2020-01-01'];`)
	require.NoError(t, err)
	lit := script.Commands[0].(AddPosits).Literals[0]
	require.Equal(t, "JSON", lit.Value.TypeId().Name())
	require.Equal(t, `[1,2,"three"]`, lit.Value.String())
}

func TestSearchUnknownRoleFails(t *testing.T) {
	db := newDB(t)
	script, err := Parse(`search [{(*, nosuchrole)}, +v, *] return v;`)
	require.NoError(t, err)
	_, err = New(db).Run(script)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrUnknownRole))
}
