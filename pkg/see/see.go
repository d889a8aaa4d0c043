// Package see implements static exchange evaluation: given a capture square, it resolves
// the full sequence of recaptures a rational player would make and reports the net
// material result, without having to actually search the resulting subtree.
package see

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// Evaluate returns the net material gain, in centipawns, of playing m and then letting both
// sides exchange on the destination square with their cheapest available attacker in turn.
// The move is assumed pseudo-legal; the position is not mutated.
func Evaluate(pos *board.Position, m board.Move) eval.Score {
	side, piece, ok := pos.Square(m.From)
	if !ok {
		return 0
	}

	sq := m.To
	occ := pos.Occupancy().Xor(m.From)

	var gain [32]eval.Score
	depth := 0
	gain[0] = captureValue(m)

	attacker := piece
	attackerColor := side

	for {
		attackerColor = attackerColor.Opponent()

		from, nextPiece, found := leastValuableAttacker(pos, occ, attackerColor, sq)
		if !found {
			break
		}
		if nextPiece == board.King {
			if _, _, defended := leastValuableAttacker(pos, occ.Xor(from), attackerColor.Opponent(), sq); defended {
				break // the king may not capture onto a square the opponent still attacks
			}
		}

		depth++
		gain[depth] = pieceValue(attacker) - gain[depth-1]

		occ = occ.Xor(from)
		attacker = nextPiece
	}

	for depth > 0 {
		if -gain[depth] < gain[depth-1] {
			gain[depth-1] = -gain[depth]
		}
		depth--
	}
	return gain[0]
}

// See returns true iff playing m guarantees a material gain of at least threshold
// centipawns after the square is fully exchanged.
func See(pos *board.Position, m board.Move, threshold eval.Score) bool {
	return Evaluate(pos, m) >= threshold
}

func captureValue(m board.Move) eval.Score {
	switch m.Type {
	case board.Capture, board.CapturePromotion:
		v := pieceValue(m.Capture)
		if m.Type == board.CapturePromotion {
			v += pieceValue(m.Promotion) - pieceValue(board.Pawn)
		}
		return v
	case board.EnPassant:
		return pieceValue(board.Pawn)
	case board.Promotion:
		return pieceValue(m.Promotion) - pieceValue(board.Pawn)
	default:
		return 0
	}
}

// leastValuableAttacker finds the cheapest piece of color attacking sq given occ, the
// occupancy as if every earlier capture in the exchange had already happened.
func leastValuableAttacker(pos *board.Position, occ board.Bitboard, color board.Color, sq board.Square) (board.Square, board.Piece, bool) {
	if pawns := board.PawnCaptureboard(color.Opponent(), board.BitMask(sq)) & pos.Piece(color, board.Pawn) & occ; pawns != 0 {
		return pawns.LastPopSquare(), board.Pawn, true
	}
	if knights := board.KnightAttackboard(sq) & pos.Piece(color, board.Knight) & occ; knights != 0 {
		return knights.LastPopSquare(), board.Knight, true
	}
	if bishops := board.BishopAttackboard(occ, sq) & pos.Piece(color, board.Bishop) & occ; bishops != 0 {
		return bishops.LastPopSquare(), board.Bishop, true
	}
	if rooks := board.RookAttackboard(occ, sq) & pos.Piece(color, board.Rook) & occ; rooks != 0 {
		return rooks.LastPopSquare(), board.Rook, true
	}
	if queens := board.QueenAttackboard(occ, sq) & pos.Piece(color, board.Queen) & occ; queens != 0 {
		return queens.LastPopSquare(), board.Queen, true
	}
	if kings := board.KingAttackboard(sq) & pos.Piece(color, board.King) & occ; kings != 0 {
		return kings.LastPopSquare(), board.King, true
	}
	return 0, 0, false
}

// pieceValue is the fixed piece weighting used only for exchange evaluation, per the
// classic SEE table -- deliberately simpler than, and independent of, eval.NominalValue's
// general-purpose weights, notably valuing the king at 0 rather than a large deterrent
// value: once a king is the cheapest attacker the exchange is ending by construction
// (Evaluate stops before a king capture onto a square the opponent still attacks), so its
// value never feeds into the result.
func pieceValue(p board.Piece) eval.Score {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight, board.Bishop:
		return 300
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	default:
		return 0
	}
}
