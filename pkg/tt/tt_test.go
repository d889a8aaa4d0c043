package tt_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	ctx := context.Background()

	// (1) Size is sized directly from the byte budget, not rounded to a power of two.

	table := tt.New(ctx, 0x1000)
	assert.Equal(t, uint64(0x1000), table.Size())

	// (2) Test read/write.

	a := board.ZobristHash(rand.Uint64())

	_, _, _, _, ok := table.Read(a)
	assert.False(t, ok)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	s := eval.Score(200)
	assert.True(t, table.Write(a, tt.ExactBound, 5, 2, s, m))

	bound, depth, score, move, ok := table.Read(a)
	assert.True(t, ok)
	assert.Equal(t, tt.ExactBound, bound)
	assert.Equal(t, 2, depth)
	assert.Equal(t, s, score)
	assert.Equal(t, m, move)

	// (3) Test replacement: always-overwrite policy, even for a shallower, earlier-ply write.

	shallower := table.Write(a, tt.ExactBound, 2, 1, eval.Score(500), m)
	assert.True(t, shallower)

	bound, depth, score, _, ok = table.Read(a)
	assert.True(t, ok)
	assert.Equal(t, tt.ExactBound, bound)
	assert.Equal(t, 1, depth)
	assert.Equal(t, eval.Score(500), score)

	deeper := table.Write(a, tt.ExactBound, 6, 2, eval.Score(500), m)
	assert.True(t, deeper)
}

func TestMinDepth(t *testing.T) {
	ctx := context.Background()
	factory := tt.NewMinDepth(4)
	table := factory(ctx, 0x1000)

	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.E2, To: board.E4}

	assert.False(t, table.Write(a, tt.ExactBound, 0, 2, eval.Score(10), m))
	assert.True(t, table.Write(a, tt.ExactBound, 0, 4, eval.Score(10), m))
}
