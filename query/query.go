// Package query implements bareclad's query interface (spec §4.7): Submit
// runs a parsed script on its own goroutine against a context.Context
// carrying a cancellation token, and streams its results back over a
// channel. Cancellation is cooperative and coarse — the executor checks it
// between top-level commands and between clauses inside one "search", never
// mid-clause — following the teacher's general preference for explicit
// context.Context plumbing over ad hoc stop channels.
package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Roenbaeck/bareclad/bcerr"
	"github.com/Roenbaeck/bareclad/blog"
	"github.com/Roenbaeck/bareclad/database"
	"github.com/Roenbaeck/bareclad/traqula"
)

// streamChunkSize bounds how many rows of one ResultSet a streaming
// submission packs into a single Chunk. It does not affect non-streaming
// submissions, which always emit one Chunk per ResultSet.
const streamChunkSize = 256

// submissionSlots caps how many scripts Submit runs at once across
// the process, mirroring the teacher's use of a weighted semaphore to bound
// concurrent work rather than letting goroutines pile up unbounded.
var submissionSlots = semaphore.NewWeighted(64)

// Chunk is one unit of output a ResultStream delivers. A non-streaming
// submission sends exactly one Chunk per "search" command, each carrying a
// full ResultSet. A streaming submission additionally slices a wide
// ResultSet into several row-batches, each its own Chunk with the same
// Columns/RowTypes header repeated — chunk boundaries never reorder rows
// within a ResultSet. The final Chunk of a submission that failed carries
// Err and no rows.
type Chunk struct {
	Columns  []string
	RowTypes [][]string
	Rows     [][]string
	Limited  bool
	Final    bool
	Err      error
}

// ResultStream is what Submit returns. Callers range over Chunks() until it
// closes; Cancel requests cooperative cancellation of the underlying script.
type ResultStream struct {
	chunks chan Chunk
	cancel context.CancelFunc
}

// Chunks returns the channel of Chunks produced by the submission. It closes
// once the script finishes, fails, or is cancelled.
func (rs *ResultStream) Chunks() <-chan Chunk { return rs.chunks }

// Cancel requests cooperative cancellation. The running script observes it
// at its next command or clause boundary, not immediately.
func (rs *ResultStream) Cancel() { rs.cancel() }

// Submit parses and runs script against db on a new goroutine (spec §4.7).
// timeout <= 0 means no deadline; the submission still supports Cancel.
// stream controls whether wide ResultSets are broken into multiple Chunks.
func Submit(db *database.Database, script string, stream bool, timeout time.Duration) (*ResultStream, error) {
	parsed, err := traqula.Parse(script)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	rs := &ResultStream{
		chunks: make(chan Chunk),
		cancel: cancel,
	}

	go rs.run(ctx, cancel, db, parsed, stream)

	return rs, nil
}

func (rs *ResultStream) run(ctx context.Context, cancel context.CancelFunc, db *database.Database, script *traqula.Script, stream bool) {
	defer cancel()
	defer close(rs.chunks)

	if err := submissionSlots.Acquire(ctx, 1); err != nil {
		rs.sendErr(ctx, fmt.Errorf("%w: %v", bcerr.ErrCancelled, err))
		return
	}
	defer submissionSlots.Release(1)

	blog.Info("query submitted", "stream", stream)
	results, err := traqula.New(db).RunContext(ctx, script)
	if err != nil {
		rs.sendErr(ctx, err)
		return
	}

	for _, result := range results {
		rs.emit(ctx, result, stream)
	}
}

// sendErr reports err, and — per spec §4.7's "timeouts fire Cancelled
// followed by Timeout" — follows a Cancelled error caused by an expired
// deadline with a second, terminal Timeout chunk. Both are plain blocking
// sends: by the time sendErr runs, ctx is already done, so racing the send
// against ctx.Done() would let the Done case win and silently drop the
// error the caller needs.
func (rs *ResultStream) sendErr(ctx context.Context, err error) {
	blog.Info("query cancelled", "err", err)
	rs.chunks <- Chunk{Err: err}
	if ctx.Err() == context.DeadlineExceeded {
		timeoutErr := fmt.Errorf("%w: %v", bcerr.ErrTimeout, ctx.Err())
		blog.Info("query timed out", "err", timeoutErr)
		rs.chunks <- Chunk{Err: timeoutErr, Final: true}
	}
}

func (rs *ResultStream) emit(ctx context.Context, result *traqula.ResultSet, stream bool) {
	if !stream || len(result.Rows) <= streamChunkSize {
		select {
		case rs.chunks <- Chunk{
			Columns:  result.Columns,
			RowTypes: result.RowTypes,
			Rows:     result.Rows,
			Limited:  result.Limited,
			Final:    true,
		}:
		case <-ctx.Done():
		}
		return
	}
	for start := 0; start < len(result.Rows); start += streamChunkSize {
		end := start + streamChunkSize
		if end > len(result.Rows) {
			end = len(result.Rows)
		}
		select {
		case rs.chunks <- Chunk{
			Columns:  result.Columns,
			RowTypes: result.RowTypes[start:end],
			Rows:     result.Rows[start:end],
			Limited:  result.Limited && end == len(result.Rows),
			Final:    end == len(result.Rows),
		}:
		case <-ctx.Done():
			return
		}
	}
}

// Collect drains a ResultStream into the plain []*traqula.ResultSet shape
// traqula.Executor.Run returns, for callers (tests, cmd/bareclad) that don't
// need streaming or cancellation and just want the assembled answer.
func Collect(rs *ResultStream) ([]*traqula.ResultSet, error) {
	var (
		results []*traqula.ResultSet
		current *traqula.ResultSet
	)
	for chunk := range rs.Chunks() {
		if chunk.Err != nil {
			return results, chunk.Err
		}
		if current == nil {
			current = &traqula.ResultSet{Columns: chunk.Columns}
		}
		current.RowTypes = append(current.RowTypes, chunk.RowTypes...)
		current.Rows = append(current.Rows, chunk.Rows...)
		current.Limited = chunk.Limited
		current.RowCount = len(current.Rows)
		if chunk.Final {
			results = append(results, current)
			current = nil
		}
	}
	return results, nil
}
