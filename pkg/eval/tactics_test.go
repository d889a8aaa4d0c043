package eval_test

import (
	"context"
	"testing"

	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestTacticsPenalizesHangingPiece(t *testing.T) {
	// White rook on e4 hangs to the black bishop on c6; nothing defends it.
	hanging := boardFromFEN(t, "4k3/8/2b5/8/4R3/8/8/4K3 w - - 0 1")
	safe := boardFromFEN(t, "4k3/8/8/8/4R3/8/8/4K3 w - - 0 1")

	hangingScore := eval.Tactics{}.Evaluate(context.Background(), hanging)
	safeScore := eval.Tactics{}.Evaluate(context.Background(), safe)

	assert.Less(t, int(hangingScore), int(safeScore),
		"an undefended rook under attack should score worse than the same rook with no attacker nearby")
}

func TestTacticsPenalizesPinnedPiece(t *testing.T) {
	// White knight on e2 is pinned to the king on e1 by the black rook on e8. In the
	// unpinned case the king stands on d1, off the e-file, and still defends the knight.
	pinned := boardFromFEN(t, "k3r3/8/8/8/8/8/4N3/4K3 w - - 0 1")
	unpinned := boardFromFEN(t, "k3r3/8/8/8/8/8/4N3/3K4 w - - 0 1")

	pinnedScore := eval.Tactics{}.Evaluate(context.Background(), pinned)
	unpinnedScore := eval.Tactics{}.Evaluate(context.Background(), unpinned)

	assert.Less(t, int(pinnedScore), int(unpinnedScore),
		"a piece pinned to its own king should score worse than the same piece with the king off the pin line")
}
