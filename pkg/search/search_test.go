package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromFEN(t *testing.T, f string) *board.Board {
	t.Helper()

	pos, turn, noprogress, fullmoves, err := fen.Decode(f)
	require.NoError(t, err)

	zt := board.NewZobristTable(0)
	return board.NewBoard(zt, pos, turn, noprogress, fullmoves)
}

// drain reads PVs off the channel until it closes, returning the last one seen.
func drain(out <-chan search.PV) search.PV {
	var last search.PV
	for pv := range out {
		last = pv
	}
	return last
}

func TestIterativeMateInOne(t *testing.T) {
	ctx := context.Background()
	b := fromFEN(t, "6k1/5ppp/8/8/8/8/8/R6K w - - 0 1")

	launcher := search.Iterative{}
	handle, out := launcher.Launch(ctx, b, tt.NoTable{}, eval.Material{}, search.Limits{Depth: 4})

	pv := drain(out)
	handle.Halt()

	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, "a1a8", pv.Moves[0].String())

	moves, ok := pv.Score.MateIn()
	require.True(t, ok, "expected a mate score, got %v", pv.Score)
	assert.Equal(t, 1, moves)
}

func TestIterativeRespectsDepthLimit(t *testing.T) {
	ctx := context.Background()
	b := fromFEN(t, fen.Initial)

	launcher := search.Iterative{}
	handle, out := launcher.Launch(ctx, b, tt.NoTable{}, eval.Material{}, search.Limits{Depth: 2})

	pv := drain(out)
	handle.Halt()

	assert.LessOrEqual(t, pv.Depth, 2)
	assert.NotEmpty(t, pv.Moves)
}

func TestIterativeHaltStopsSearch(t *testing.T) {
	ctx := context.Background()
	b := fromFEN(t, fen.Initial)

	launcher := search.Iterative{}
	handle, out := launcher.Launch(ctx, b, tt.NoTable{}, eval.Material{}, search.Limits{Infinite: true})

	time.Sleep(20 * time.Millisecond)
	pv := handle.Halt()

	assert.NotEmpty(t, pv.Moves)

	for range out {
		// drain any PV still buffered from the last iteration before the close.
	}
}

func TestPVBest(t *testing.T) {
	pv := search.PV{}
	assert.Equal(t, board.Move{}, pv.Best())

	m := board.Move{From: board.E2, To: board.E4}
	pv.Moves = []board.Move{m}
	assert.Equal(t, m, pv.Best())
}
