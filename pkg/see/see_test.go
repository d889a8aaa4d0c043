package see_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/see"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Run("free pawn, undefended", func(t *testing.T) {
		pos, err := board.NewPosition([]board.Placement{
			{Square: board.A1, Color: board.White, Piece: board.King},
			{Square: board.A8, Color: board.Black, Piece: board.King},
			{Square: board.E4, Color: board.White, Piece: board.Rook},
			{Square: board.E5, Color: board.Black, Piece: board.Pawn},
		}, 0, 0)
		require.NoError(t, err)

		m := board.Move{Type: board.Capture, From: board.E4, To: board.E5, Piece: board.Rook, Capture: board.Pawn}
		assert.Equal(t, eval.NominalValue(board.Pawn), see.Evaluate(pos, m))
		assert.True(t, see.See(pos, m, eval.NominalValue(board.Pawn)))
	})

	t.Run("rook takes defended pawn, loses the rook", func(t *testing.T) {
		pos, err := board.NewPosition([]board.Placement{
			{Square: board.A1, Color: board.White, Piece: board.King},
			{Square: board.A8, Color: board.Black, Piece: board.King},
			{Square: board.E1, Color: board.White, Piece: board.Rook},
			{Square: board.E5, Color: board.Black, Piece: board.Pawn},
			{Square: board.D6, Color: board.Black, Piece: board.Pawn},
		}, 0, 0)
		require.NoError(t, err)

		m := board.Move{Type: board.Capture, From: board.E1, To: board.E5, Piece: board.Rook, Capture: board.Pawn}
		want := eval.NominalValue(board.Pawn) - eval.NominalValue(board.Rook)
		assert.Equal(t, want, see.Evaluate(pos, m))
		assert.False(t, see.See(pos, m, 0))
	})

	t.Run("pawn takes pawn, defended by pawn only: even trade", func(t *testing.T) {
		pos, err := board.NewPosition([]board.Placement{
			{Square: board.A1, Color: board.White, Piece: board.King},
			{Square: board.A8, Color: board.Black, Piece: board.King},
			{Square: board.D4, Color: board.White, Piece: board.Pawn},
			{Square: board.E5, Color: board.Black, Piece: board.Pawn},
			{Square: board.F6, Color: board.Black, Piece: board.Pawn},
		}, 0, 0)
		require.NoError(t, err)

		m := board.Move{Type: board.Capture, From: board.D4, To: board.E5, Piece: board.Pawn, Capture: board.Pawn}
		assert.Equal(t, eval.Score(0), see.Evaluate(pos, m))
	})
}
