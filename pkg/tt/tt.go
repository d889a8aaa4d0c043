// Package tt contains the transposition table used to cache search results across the
// move tree and across iterative-deepening iterations.
package tt

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score, set according to
// why the search stopped at this node: a raised alpha with no cutoff is Exact, a beta
// cutoff is a LowerBound (the true score is at least this good), and a node that never
// raised alpha is an UpperBound (the true score is at most this good).
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// Table is a transposition table keyed by Zobrist hash. Must be safe for concurrent use by
// a single writer searching and readers probing the same slot from another goroutine.
type Table interface {
	// Read returns the bound, depth, score and best move for the given position hash, if present.
	Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool)
	// Write stores the entry into the table, depending on table semantics and replacement policy.
	Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
	// Clear discards all entries, keeping the allocated size.
	Clear()
}

// Factory constructs a Table of approximately the given size in bytes.
type Factory func(ctx context.Context, sizeBytes uint64) Table

// metadata captures node metadata, notably bound and best move. Packed to keep entries small.
type metadata struct {
	bound      Bound
	from, to   board.Square
	promotion  board.Piece
	ply, depth uint16
}

// node represents a single search result cached in a slot.
type node struct {
	hash  board.ZobristHash
	score eval.Score
	md    metadata
}

// table indexes slots by an unbiased multiply-high-bits mapping rather than a power-of-two
// mask, so the number of slots can be sized directly from a raw megabyte budget instead of
// rounding down to the nearest power of two and wasting up to half the requested memory.
type table struct {
	slots []*node
	used  uint64
}

// slotOverhead is the memory cost of one occupied slot: the 8-byte *node pointer plus the
// heap-allocated node itself (hash 8 + score 4 + metadata 8, padded to 24 bytes).
const slotOverhead = 32

// New allocates a table with as many slots as fit in sizeBytes, each slot costing
// slotOverhead once populated.
func New(ctx context.Context, sizeBytes uint64) Table {
	n := sizeBytes / slotOverhead
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v slots", sizeBytes>>20, n)

	return &table{slots: make([]*node, n)}
}

// index maps a 64-bit hash onto [0, numSlots) via the high bits of a 128-bit product. This
// is unbiased for any numSlots, unlike hash&(numSlots-1) which requires a power of two.
func (t *table) index(hash board.ZobristHash) uint64 {
	hi, _ := bits.Mul64(uint64(hash), uint64(len(t.slots)))
	return hi
}

func (t *table) Size() uint64 {
	return uint64(len(t.slots)) * slotOverhead
}

func (t *table) Used() float64 {
	return float64(atomic.LoadUint64(&t.used)) / float64(len(t.slots))
}

func (t *table) Clear() {
	for i := range t.slots {
		t.slots[i] = nil
	}
	atomic.StoreUint64(&t.used, 0)
}

func (t *table) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	addr := (*unsafe.Pointer)(unsafe.Pointer(&t.slots[t.index(hash)]))

	ptr := (*node)(atomic.LoadPointer(addr))
	if ptr != nil && hash == ptr.hash {
		bestmove := board.Move{From: ptr.md.from, To: ptr.md.to, Promotion: ptr.md.promotion}
		return ptr.md.bound, int(ptr.md.depth), ptr.score, bestmove, true
	}
	return 0, 0, 0, board.Move{}, false
}

func (t *table) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	addr := (*unsafe.Pointer)(unsafe.Pointer(&t.slots[t.index(hash)]))

	fresh := &node{
		hash:  hash,
		score: score,
		md: metadata{
			bound:     bound,
			from:      move.From,
			to:        move.To,
			promotion: move.Promotion,
			ply:       uint16(ply),
			depth:     uint16(depth),
		},
	}

	for {
		ptr := (*node)(atomic.LoadPointer(addr))
		if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(ptr), unsafe.Pointer(fresh)) {
			if ptr == nil {
				atomic.AddUint64(&t.used, 1)
			}
			return true
		}
	}
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// WriteFilter is a predicate on the Write operation.
type WriteFilter func(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool

// WriteLimited is a Table wrapper that ignores certain writes, such as less than a given
// minimum depth. Useful if evaluation depends on recent move history not captured by hash.
type WriteLimited struct {
	Filter WriteFilter
	Table  Table
}

func (w WriteLimited) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	return w.Table.Read(hash)
}

func (w WriteLimited) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	if w.Filter(hash, bound, ply, depth, score, move) {
		return false
	}
	return w.Table.Write(hash, bound, ply, depth, score, move)
}

func (w WriteLimited) Size() uint64 {
	return w.Table.Size()
}

func (w WriteLimited) Used() float64 {
	return w.Table.Used()
}

func (w WriteLimited) Clear() {
	w.Table.Clear()
}

// NewMinDepth creates a Factory that discards writes below a minimum depth.
func NewMinDepth(min int) Factory {
	return func(ctx context.Context, sizeBytes uint64) Table {
		return WriteLimited{
			Filter: func(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
				return depth < min
			},
			Table: New(ctx, sizeBytes),
		}
	}
}

// NoTable is a Nop implementation, useful when the table is disabled entirely.
type NoTable struct{}

func (NoTable) Read(hash board.ZobristHash) (Bound, int, eval.Score, board.Move, bool) {
	return 0, 0, 0, board.Move{}, false
}

func (NoTable) Write(hash board.ZobristHash, bound Bound, ply, depth int, score eval.Score, move board.Move) bool {
	return false
}

func (NoTable) Size() uint64 { return 0 }
func (NoTable) Used() float64 { return 0 }
func (NoTable) Clear()        {}
