package search

import "github.com/corvidchess/corvid/pkg/eval"

// Mate scores are computed relative to the search root (so that shorter mates dominate
// longer ones under negamax's max operation), but a transposition-table entry can be
// read back at a different ply than it was written -- the same position reached by a
// longer or shorter path. Storing and reading adjust the encoding to be relative to the
// node instead, the standard correction: https://www.chessprogramming.org/Transposition_Table
// ("Mate Scores").
func scoreToTT(score eval.Score, ply int) eval.Score {
	switch {
	case score >= eval.MateBound:
		return score + eval.Score(ply)
	case score <= -eval.MateBound:
		return score - eval.Score(ply)
	default:
		return score
	}
}

func scoreFromTT(score eval.Score, ply int) eval.Score {
	switch {
	case score >= eval.MateBound:
		return score - eval.Score(ply)
	case score <= -eval.MateBound:
		return score + eval.Score(ply)
	default:
		return score
	}
}
