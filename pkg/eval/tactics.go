package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// Tactics penalizes hanging pieces and pins, a cheap static approximation of the
// exchange risk a deeper search would otherwise have to spend nodes discovering.
type Tactics struct{}

func (Tactics) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()
	turn := b.Turn()
	return tacticsFor(pos, turn) - tacticsFor(pos, turn.Opponent())
}

// tacticsFor sums the penalty for side's own exposed pieces: undefended pieces under
// attack, and pieces pinned to the king.
func tacticsFor(pos *board.Position, side board.Color) Score {
	opp := side.Opponent()

	var penalty Score
	for _, p := range FindPins(pos, side, board.King) {
		if color, piece, ok := pos.Square(p.Pinned); ok && color == side {
			penalty += NominalValue(piece) / 10
		}
	}

	for _, piece := range board.KingQueenRookKnightBishop {
		bb := pos.Piece(side, piece)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)

			attackers := FindCapture(pos, opp, sq)
			if len(attackers) == 0 {
				continue
			}
			if defenders := FindCapture(pos, side, sq); len(defenders) == 0 {
				// Cheapest attacker determines whether the exchange is even worth
				// threatening; an undefended piece attacked only by a costlier one
				// is a weaker threat than the nominal value alone suggests.
				cheapest := SortByNominalValue(attackers)[0]
				risk := NominalValue(piece)
				if v := NominalValue(cheapest.Piece); v < risk {
					risk = v
				}
				penalty += risk / 10
			}
		}
	}
	return -penalty
}
