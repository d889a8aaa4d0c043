package search

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/order"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// run carries the mutable state of one iterative-deepening iteration's tree walk: the
// board being searched (mutated in place via PushMove/PopMove as the tree is walked), the
// shared transposition table, the move-ordering tables, and the per-ply static-eval stack
// the "improving" heuristic reads from.
type run struct {
	b       *board.Board
	table   tt.Table
	eval    eval.Evaluator
	history *order.History
	killers *order.Killers
	nodes   uint64

	staticEval [MaxDepth + 8]eval.Score
	haveStatic [MaxDepth + 8]bool
}

// improving reports whether the static evaluation at ply improved on the one two plies
// earlier (the same side to move), false if either slot was never recorded -- a node that
// was skipped by pruning before recording a static eval counts as "not improving".
func (r *run) improving(ply int) bool {
	if ply < 2 || !r.haveStatic[ply] || !r.haveStatic[ply-2] {
		return false
	}
	return r.staticEval[ply] > r.staticEval[ply-2]
}

// negamax searches the current position to depth, returning the score from the
// perspective of the side to move, and, for PV nodes, the remaining principal variation.
// ply is the distance from this iteration's search root, zero at the root itself --
// distinct from board.Board.Ply, which counts from wherever the game itself started.
func (r *run) negamax(ctx context.Context, ply, depth int, alpha, beta eval.Score, isPV bool) (eval.Score, []board.Move) {
	if contextx.IsCancelled(ctx) {
		return alpha, nil
	}

	if ply > 0 && (r.b.NoProgress() >= 100 || r.b.RepetitionCount() >= 2) {
		return eval.Draw, nil
	}
	if r.b.Result().Outcome == board.Draw {
		return eval.Draw, nil
	}

	if depth <= 0 {
		return r.quiescence(ctx, alpha, beta), nil
	}

	r.nodes++

	var hashMove board.Move
	if bound, d, score, move, ok := r.table.Read(r.b.Hash()); ok {
		hashMove = move
		if ply > 0 && !isPV && d >= depth {
			s := scoreFromTT(score, ply)
			switch bound {
			case tt.ExactBound:
				return s, nil
			case tt.LowerBound:
				if s >= beta {
					return s, nil
				}
			case tt.UpperBound:
				if s <= alpha {
					return s, nil
				}
			}
		}
	}

	inCheck := r.b.Position().IsChecked(r.b.Turn())
	staticEval := r.eval.Evaluate(ctx, r.b)
	r.staticEval[ply] = staticEval
	r.haveStatic[ply] = true
	improving := r.improving(ply)

	if !isPV && !inCheck && depth < 5 {
		margin := eval.Score(200 * (depth - boolToInt(improving)))
		if staticEval-margin >= beta {
			return staticEval, nil
		}
	}

	if !isPV && !inCheck && ply > 0 && staticEval >= beta && r.hasNonPawnMaterial() {
		r.b.PushNullMove()
		reduced := depth - 3 - depth/3
		if reduced < 0 {
			reduced = 0
		}
		score, _ := r.negamax(ctx, ply+1, reduced, beta.Negate(), beta.Negate()+1, false)
		score = score.Negate()
		r.b.PopNullMove()

		if score >= beta {
			return score, nil
		}
	}

	moves := r.b.Position().PseudoLegalMoves(r.b.Turn())
	order.Sort(r.b.Position(), moves, hashMove, r.killerAt(ply), r.history, r.b.Turn())

	hasLegalMove := false
	legalTried := 0
	triedQuiet := make([]board.Move, 0, len(moves))
	bound := tt.UpperBound
	var best board.Move
	var pv []board.Move

	for _, m := range moves {
		quiet := !m.Type.IsCapture() && m.Type != board.Promotion && m.Type != board.CapturePromotion

		if !isPV && quiet && depth <= 5 {
			limit := 8 * depth / (2 - boolToInt(improving))
			if legalTried >= limit {
				continue
			}
		}

		if !r.b.PushMove(m) {
			continue
		}
		hasLegalMove = true
		legalTried++

		extension := 0
		if r.b.Position().IsChecked(r.b.Turn()) {
			extension = 1
		}

		var score eval.Score
		var rem []board.Move

		if legalTried == 1 {
			score, rem = r.negamax(ctx, ply+1, depth-1+extension, beta.Negate(), alpha.Negate(), isPV)
			score = score.Negate()
		} else {
			red := 0
			if extension == 0 {
				red = lmr(depth, legalTried-1)
			}
			score, _ = r.negamax(ctx, ply+1, depth-1-red+extension, alpha.Negate()-1, alpha.Negate(), false)
			score = score.Negate()
			if score > alpha && (score < beta || red > 0) {
				score, rem = r.negamax(ctx, ply+1, depth-1+extension, beta.Negate(), alpha.Negate(), isPV)
				score = score.Negate()
			}
		}

		r.b.PopMove()

		if quiet {
			triedQuiet = append(triedQuiet, m)
		}

		if score > alpha {
			alpha = score
			best = m
			bound = tt.ExactBound
			if isPV {
				pv = append([]board.Move{m}, rem...)
			}
		}

		if alpha >= beta {
			bound = tt.LowerBound
			if quiet {
				r.killers.Update(ply, m)
				r.history.Bonus(r.b.Turn(), m, triedQuiet, depth)
			}
			break
		}
	}

	if !hasLegalMove {
		if inCheck {
			return eval.MinScore + eval.Score(ply), nil
		}
		return eval.Draw, nil
	}

	r.table.Write(r.b.Hash(), bound, ply, depth, scoreToTT(alpha, ply), best)
	return alpha, pv
}

func (r *run) killerAt(ply int) board.Move {
	m, _ := r.killers.Get(ply)
	return m
}

// hasNonPawnMaterial guards null-move pruning against zugzwang-prone endgames (king and
// pawns only), where passing the turn is not a safe proxy for "already winning".
func (r *run) hasNonPawnMaterial() bool {
	turn := r.b.Turn()
	pos := r.b.Position()
	return pos.Piece(turn, board.Knight)|pos.Piece(turn, board.Bishop)|pos.Piece(turn, board.Rook)|pos.Piece(turn, board.Queen) != 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
