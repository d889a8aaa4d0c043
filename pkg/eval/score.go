package eval

import (
	"fmt"

	"github.com/corvidchess/corvid/pkg/board"
)

// Score is a signed position score in centipawns, positive favoring the side to move.
// Search stores scores of this type directly in the transposition table, so it must be
// exact integer arithmetic: mate scores are encoded as Mate-minus-ply and must round-trip
// without the rounding error a float representation would introduce.
type Score int32

const (
	Draw Score = 0

	// Mate is the score of a position won by delivering mate on the current ply. A mate
	// found N plies deeper is reported as Mate-N ("mated in N"), so shallower mates always
	// score higher than deeper ones and the search prefers the fastest mate available.
	Mate Score = 32000

	// MateBound is the threshold above (or, negated, below) which a score is understood to
	// encode a forced mate rather than a material/positional evaluation.
	MateBound Score = Mate - 128

	Inf    Score = Mate + 1
	NegInf Score = -Inf

	MinScore Score = -Mate
	MaxScore Score = Mate
)

func (s Score) String() string {
	if m, ok := s.MateIn(); ok {
		if m >= 0 {
			return fmt.Sprintf("mate %d", m/2+1)
		}
		return fmt.Sprintf("mate %d", -((1-m)/2))
	}
	return fmt.Sprintf("%d", int32(s))
}

// IsMate returns true iff the score encodes a forced mate rather than a material score.
func (s Score) IsMate() bool {
	return s >= MateBound || s <= -MateBound
}

// MateIn returns the number of plies to mate (negative if being mated) and true, iff the
// score encodes a forced mate.
func (s Score) MateIn() (int, bool) {
	switch {
	case s >= MateBound:
		return int(Mate - s), true
	case s <= -MateBound:
		return -int(Mate + s), true
	default:
		return 0, false
	}
}

// Negate flips the score to the opponent's perspective, preserving mate-distance encoding.
func (s Score) Negate() Score {
	return -s
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// Crop crops a Score into [MinScore;MaxScore].
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}
