package search

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/order"
	"github.com/corvidchess/corvid/pkg/see"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// quiescence resolves captures and promotions until the position is quiet, escaping the
// horizon effect a hard depth cutoff would otherwise cause. It never returns worse than
// the standing pat score, since the side to move is never forced to capture.
func (r *run) quiescence(ctx context.Context, alpha, beta eval.Score) eval.Score {
	if contextx.IsCancelled(ctx) {
		return alpha
	}
	r.nodes++

	standPat := r.eval.Evaluate(ctx, r.b)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := quietless(r.b.Position().PseudoLegalMoves(r.b.Turn()))
	order.Sort(r.b.Position(), moves, board.Move{}, board.Move{}, r.history, r.b.Turn())

	for _, m := range moves {
		if m.Type.IsCapture() && !see.See(r.b.Position(), m, 0) {
			continue // losing capture: never improves on standing pat once recaptured
		}
		if !r.b.PushMove(m) {
			continue
		}

		score := r.quiescence(ctx, beta.Negate(), alpha.Negate()).Negate()
		r.b.PopMove()

		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}
	return alpha
}

// quietless filters a pseudo-legal move list down to captures and promotions, reusing the
// backing array since the caller discards the original slice.
func quietless(moves []board.Move) []board.Move {
	out := moves[:0]
	for _, m := range moves {
		if m.Type.IsCapture() || m.Type == board.Promotion || m.Type == board.CapturePromotion {
			out = append(out, m)
		}
	}
	return out
}
