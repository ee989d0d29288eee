package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/database"
	"github.com/Roenbaeck/bareclad/persist"
)

func newDB(t *testing.T) *database.Database {
	t.Helper()
	p, err := persist.Open(persist.InMemory, "")
	require.NoError(t, err)
	db, err := database.Open(p)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// S1, run through the query interface instead of calling the executor
// directly, non-streaming.
func TestSubmitNonStreaming(t *testing.T) {
	db := newDB(t)
	rs, err := Submit(db, `
		add role name;
		add posit [{(+p, name)}, "Alice", '2023-01-01'];
		search [{(*, name)}, +n, *] return n;
	`, false, 0)
	require.NoError(t, err)

	results, err := Collect(rs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []string{"n"}, results[0].Columns)
	require.Equal(t, [][]string{{"Alice"}}, results[0].Rows)
}

// Same script, streaming mode: with well under streamChunkSize rows this
// must still assemble to the identical single row.
func TestSubmitStreamingSmallResult(t *testing.T) {
	db := newDB(t)
	rs, err := Submit(db, `
		add role name;
		add posit [{(+p, name)}, "Alice", '2023-01-01'];
		search [{(*, name)}, +n, *] return n;
	`, true, 0)
	require.NoError(t, err)

	results, err := Collect(rs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, [][]string{{"Alice"}}, results[0].Rows)
}

// Streaming mode must split a result wider than streamChunkSize into more
// than one Chunk, without reordering or dropping rows.
func TestSubmitStreamingSplitsChunks(t *testing.T) {
	db := newDB(t)

	var script string
	script += "add role name;\n"
	const n = streamChunkSize + 10
	for i := 0; i < n; i++ {
		script += `add posit [{(+p, name)}, "N", '2020-01-01'];` + "\n"
	}
	script += "search [{(*, name)}, n, *] return n;\n"

	rs, err := Submit(db, script, true, 0)
	require.NoError(t, err)

	var chunkCount, rowCount int
	for chunk := range rs.Chunks() {
		require.NoError(t, chunk.Err)
		chunkCount++
		rowCount += len(chunk.Rows)
	}
	require.Greater(t, chunkCount, 1)
	require.Equal(t, n, rowCount)
}

func TestSubmitParseErrorReturnsImmediately(t *testing.T) {
	db := newDB(t)
	_, err := Submit(db, `add posit [{(+p, name)}]`, false, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrParseError))
}

func TestSubmitCancel(t *testing.T) {
	db := newDB(t)
	rs, err := Submit(db, `
		add role name;
		search [{(*, name)}, +n, *] return n;
	`, false, 0)
	require.NoError(t, err)
	rs.Cancel()

	var sawErr error
	for chunk := range rs.Chunks() {
		if chunk.Err != nil {
			sawErr = chunk.Err
		}
	}
	if sawErr != nil {
		require.True(t, errors.Is(sawErr, bcerr.ErrCancelled))
	}
}

func TestSubmitTimeout(t *testing.T) {
	db := newDB(t)
	rs, err := Submit(db, `add role name;`, false, time.Nanosecond)
	require.NoError(t, err)

	var errs []error
	for chunk := range rs.Chunks() {
		if chunk.Err != nil {
			errs = append(errs, chunk.Err)
		}
	}
	require.NotEmpty(t, errs)
	require.True(t, errors.Is(errs[0], bcerr.ErrCancelled))
}
