package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// Sum combines several evaluators into one by adding their scores, each from the
// perspective of the side to move. Used to layer evaluation noise on top of the
// positional evaluator without either one needing to know about the other.
type Sum []Evaluator

func (s Sum) Evaluate(ctx context.Context, b *board.Board) Score {
	var total Score
	for _, e := range s {
		total += e.Evaluate(ctx, b)
	}
	return total
}
