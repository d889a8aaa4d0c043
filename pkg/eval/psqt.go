package eval

import (
	"context"

	"github.com/corvidchess/corvid/pkg/board"
)

// PSQT is a material + piece-square-table evaluator, interpolating between a midgame and
// an endgame table as material comes off the board. Values are in centipawns, White POV;
// a mirror is applied for Black.
type PSQT struct{}

// phaseWeight is the contribution of one piece of the given kind towards the 24-point game
// phase used to interpolate between the midgame and endgame tables. Pawns and kings do not
// affect phase; rooks and queens count for more since their exchange most changes the
// character of a position.
var phaseWeight = [board.NumPieces]int{
	board.Pawn:   0,
	board.Knight: 1,
	board.Bishop: 1,
	board.Rook:   2,
	board.Queen:  4,
	board.King:   0,
}

const maxPhase = 24

func (PSQT) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()
	turn := b.Turn()

	var mg, eg Score
	phase := 0

	for p := board.ZeroPiece; p < board.NumPieces; p++ {
		for c := board.White; c <= board.Black; c++ {
			bb := pos.Piece(c, p)
			phase += phaseWeight[p] * bb.PopCount()

			sign := Score(1)
			if c == board.Black {
				sign = -1
			}

			for t := bb; t != 0; {
				var sq board.Square
				sq, t = t.PopLSB()
				mg += sign * (NominalValue(p) + pieceSquareValue(mgTable, p, c, sq))
				eg += sign * (NominalValue(p) + pieceSquareValue(egTable, p, c, sq))
			}
		}
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	score := Score((int(mg)*phase + int(eg)*(maxPhase-phase)) / maxPhase)
	if turn == board.Black {
		score = -score
	}
	return score
}

// pieceSquareValue looks up the White-POV table value for a piece of color c on sq,
// mirroring vertically for Black so the same table serves both sides.
func pieceSquareValue(table [board.NumPieces][64]int16, p board.Piece, c board.Color, sq board.Square) Score {
	idx := standardIndex(sq)
	if c == board.Black {
		idx ^= 56 // flip rank, keep file: mirror White's table onto Black's side
	}
	return Score(table[p][idx])
}

// standardIndex converts this module's Square (File H=0..A=7, ascending ranks) to the
// conventional a1=0..h8=63 indexing the piece-square tables are written in.
func standardIndex(sq board.Square) int {
	file := 7 - int(sq.File()) // FileH=0 -> h=7; FileA=7 -> a=0
	rank := int(sq.Rank())
	return rank*8 + file
}

// Tables below are indexed a1..h8, White POV, adapted from the classic Michniewski-style
// simplified evaluation tables used throughout open-source engines (zurichess carries the
// midgame values verbatim). The endgame king table rewards centralization; everything else
// keeps the same shape across phases, which is the common simplification when a second,
// fully independent endgame table isn't worth the size.
var mgTable = [board.NumPieces][64]int16{
	board.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	board.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	board.Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	board.Queen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	board.King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

var egTable = [board.NumPieces][64]int16{
	board.Pawn:   mgTable[board.Pawn],
	board.Knight: mgTable[board.Knight],
	board.Bishop: mgTable[board.Bishop],
	board.Rook:   mgTable[board.Rook],
	board.Queen:  mgTable[board.Queen],
	board.King: {
		-50, -30, -30, -30, -30, -30, -30, -50,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-50, -40, -30, -20, -20, -30, -40, -50,
	},
}
