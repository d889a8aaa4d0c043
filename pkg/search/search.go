// Package search implements iterative-deepening alpha-beta search over a board position,
// producing a principal variation per completed depth.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
)

// ErrHalted indicates a search was stopped before completing its current iteration.
var ErrHalted = errors.New("search halted")

// MaxDepth is the deepest iterative-deepening depth attempted, matching the UCI
// convention that a 127-ply search is effectively unbounded.
const MaxDepth = 127

// Limits bounds a single search, mirroring the UCI "go" subcommand parameters.
type Limits struct {
	Depth    int           // 0 == no limit
	Nodes    uint64        // 0 == no limit
	MoveTime time.Duration // 0 == not set; overrides WTime/BTime if set

	WTime, BTime time.Duration
	WInc, BInc   time.Duration

	Infinite bool // no time limit; Depth, Nodes, MaxDepth or a found mate still end the search
}

func (l Limits) String() string {
	return fmt.Sprintf("{depth=%v, nodes=%v, movetime=%v, wtime=%v, btime=%v, infinite=%v}",
		l.Depth, l.Nodes, l.MoveTime, l.WTime, l.BTime, l.Infinite)
}

// PV is the principal variation produced by one completed iterative-deepening iteration.
type PV struct {
	Depth int
	Moves []board.Move
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Hash  float64 // TT utilization [0;1] at the end of this iteration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v",
		p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), board.PrintMoves(p.Moves))
}

// Best returns the first move of the principal variation, or the null move if empty.
func (p PV) Best() board.Move {
	if len(p.Moves) == 0 {
		return board.Move{}
	}
	return p.Moves[0]
}

// Launcher starts a new search from a position, returning a Handle to manage it and a
// channel emitting one PV per completed iterative-deepening depth.
type Launcher interface {
	// Launch expects an exclusive (forked) board, since the search mutates it via
	// PushMove/PopMove while walking the tree. The channel closes when the search
	// is exhausted (depth/node limit reached) or halted.
	Launch(ctx context.Context, b *board.Board, table tt.Table, evaluator eval.Evaluator, limits Limits) (Handle, <-chan PV)
}

// Handle lets the owner stop a running search and retrieve its last completed PV.
type Handle interface {
	// Halt stops the search, if running, and returns the last completed iteration's PV.
	// Idempotent.
	Halt() PV
}
