// Package order scores and sorts pseudo-legal moves so that alpha-beta search visits the
// moves most likely to be best first, maximizing cutoffs.
package order

import (
	"sort"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/see"
)

// Bucket priorities are spaced far enough apart that a bucket's internal tie-break never
// overflows into a neighboring bucket.
const (
	hashBucket        = 5_000_000
	goodCaptureBucket = 4_000_000
	killerBucket      = 3_000_000
	quietBucket       = 2_000_000
	badCaptureBucket  = 1_000_000
)

// historyClamp bounds the history table so the gravity formula keeps it from drifting
// without limit across a long search.
const historyClamp = 16384

// History is a side/from/to table of quiet-move cutoff statistics, used to prioritize
// quiet moves that have produced cutoffs elsewhere in the tree.
type History struct {
	table [board.NumColors][board.NumSquares][board.NumSquares]int32
}

// Bonus rewards the move that caused a beta cutoff and penalizes the quiet moves that were
// tried and failed to, at the same node, both scaled by depth^2 and applied via a gravity
// formula so the table stays bounded without an explicit decay pass.
func (h *History) Bonus(side board.Color, cutoff board.Move, tried []board.Move, depth int) {
	bonus := int32(depth * depth)
	if bonus > historyClamp {
		bonus = historyClamp
	}

	h.apply(side, cutoff, bonus)
	for _, m := range tried {
		if m.Equals(cutoff) {
			continue
		}
		h.apply(side, m, -bonus)
	}
}

func (h *History) apply(side board.Color, m board.Move, bonus int32) {
	v := &h.table[side][m.From][m.To]
	*v += bonus - (*v)*abs32(bonus)/historyClamp
}

// Get returns the current history value for a quiet move, for diagnostics and testing.
func (h *History) Get(side board.Color, m board.Move) int32 {
	return h.table[side][m.From][m.To]
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Killers remembers, per ply, the single quiet move that most recently caused a beta
// cutoff there -- tried early in sibling nodes at the same ply since it is likely to cut
// off again.
type Killers struct {
	moves []board.Move
}

// Get returns the killer move remembered for ply, if any.
func (k *Killers) Get(ply int) (board.Move, bool) {
	if ply >= len(k.moves) {
		return board.Move{}, false
	}
	m := k.moves[ply]
	return m, m != board.Move{}
}

// Update records m as the killer for ply, and clears the killer two plies ahead so a
// stale entry from an unrelated subtree is never reused.
func (k *Killers) Update(ply int, m board.Move) {
	for len(k.moves) <= ply+2 {
		k.moves = append(k.moves, board.Move{})
	}
	k.moves[ply] = m
	k.moves[ply+2] = board.Move{}
}

// Sort orders moves in place, most promising first, per the bucket scheme: hash move,
// good captures (SEE >= 0) by MVV-LVA, the ply's killer, quiet moves by history, then bad
// captures (SEE < 0) by MVV-LVA.
func Sort(pos *board.Position, moves []board.Move, hash board.Move, killer board.Move, h *History, side board.Color) {
	type scored struct {
		move     board.Move
		priority int64
	}

	ranked := make([]scored, len(moves))
	for i, m := range moves {
		ranked[i] = scored{move: m, priority: score(pos, m, hash, killer, h, side)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].priority > ranked[j].priority
	})

	for i, r := range ranked {
		moves[i] = r.move
	}
}

func score(pos *board.Position, m board.Move, hash, killer board.Move, h *History, side board.Color) int64 {
	if m.Equals(hash) {
		return hashBucket
	}

	if m.Type.IsCapture() {
		mvvlva := 100*int64(eval.NominalValue(captureVictim(m))) - int64(eval.NominalValue(m.Piece))
		if see.See(pos, m, 0) {
			return goodCaptureBucket + mvvlva
		}
		return badCaptureBucket + mvvlva
	}

	if m.Equals(killer) {
		return killerBucket
	}

	return quietBucket + int64(h.Get(side, m))
}

func captureVictim(m board.Move) board.Piece {
	if m.Type == board.EnPassant {
		return board.Pawn
	}
	return m.Capture
}

