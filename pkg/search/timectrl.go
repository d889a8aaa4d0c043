package search

import (
	"time"

	"github.com/corvidchess/corvid/pkg/board"
)

// timeBudget derives the soft and hard time limits for one search from Limits, per the
// color to move. go movetime sets the hard limit directly with no soft limit -- the
// iteration in progress always runs to completion or to the hard deadline, never stopping
// early between iterations. go wtime/btime derives both from the remaining clock: soft is
// consulted only between iterations (finish the current one, don't start the next), hard
// is enforced inside the recursion at every node.
func timeBudget(l Limits, turn board.Color) (soft, hard time.Duration, ok bool) {
	if l.Infinite {
		return 0, 0, false
	}
	if l.MoveTime > 0 {
		return 0, l.MoveTime, true
	}

	left, inc := l.WTime, l.WInc
	if turn == board.Black {
		left, inc = l.BTime, l.BInc
	}
	if left <= 0 {
		return 0, 0, false
	}

	soft = left/20 + inc/2
	hard = left / 4
	return soft, hard, true
}
