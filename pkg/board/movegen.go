package board

// promotionPieces lists the four pieces a pawn may promote to, queen first since it is
// almost always the best choice and benefits from being tried first in move ordering.
var promotionPieces = []Piece{Queen, Rook, Knight, Bishop}

// LegalMoves returns every legal move available to turn in this position. It generates
// pseudo-legal candidates and discards any that leave the mover's own king in check,
// rather than computing pins up front -- legality is established by construction and test.
func (p *Position) LegalMoves(turn Color) []Move {
	pseudo := p.PseudoLegalMoves(turn)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if _, ok := p.Move(m); ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// PseudoLegalMoves returns every move available to turn ignoring whether it leaves the
// mover's own king in check.
func (p *Position) PseudoLegalMoves(turn Color) []Move {
	var moves []Move

	own := p.Color(turn)
	opp := p.Color(turn.Opponent())
	occ := own | opp

	moves = genPawnMoves(p, turn, occ, opp, moves)
	moves = genOfficerMoves(p, turn, Knight, own, occ, moves)
	moves = genOfficerMoves(p, turn, Bishop, own, occ, moves)
	moves = genOfficerMoves(p, turn, Rook, own, occ, moves)
	moves = genOfficerMoves(p, turn, Queen, own, occ, moves)
	moves = genOfficerMoves(p, turn, King, own, occ, moves)
	moves = genCastling(p, turn, occ, moves)

	return moves
}

// genOfficerMoves emits every quiet move for the piece before any capture, each group in
// ascending target-square order, rather than interleaving them in attack-board bit order.
func genOfficerMoves(p *Position, turn Color, piece Piece, own, occ Bitboard, moves []Move) []Move {
	opp := p.Color(turn.Opponent())

	for bb := p.Piece(turn, piece); bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		targets := Attackboard(occ, from, piece) &^ own

		for t := targets &^ opp; t != 0; {
			var to Square
			to, t = t.PopLSB()
			moves = append(moves, Move{Type: Normal, From: from, To: to, Piece: piece})
		}
		for t := targets & opp; t != 0; {
			var to Square
			to, t = t.PopLSB()
			_, capture, _ := p.Square(to)
			moves = append(moves, Move{Type: Capture, From: from, To: to, Piece: piece, Capture: capture})
		}
	}
	return moves
}

func genPawnMoves(p *Position, turn Color, occ, opp Bitboard, moves []Move) []Move {
	promoRank := PawnPromotionRank(turn)
	jumpRank := PawnJumpRank(turn)
	dir := 1
	if turn == Black {
		dir = -1
	}

	for bb := p.Piece(turn, Pawn); bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		for t := pawnAttack[turn][from] & opp; t != 0; {
			var to Square
			to, t = t.PopLSB()
			_, capture, _ := p.Square(to)
			moves = appendPawnCapture(moves, from, to, capture, promoRank)
		}

		one := NewSquare(from.File(), Rank(int(from.Rank())+dir))
		if !occ.IsSet(one) {
			moves = appendPawnAdvance(moves, from, one, promoRank)

			two := NewSquare(from.File(), Rank(int(from.Rank())+2*dir))
			if BitMask(two)&jumpRank != 0 && !occ.IsSet(two) {
				moves = append(moves, Move{Type: Jump, From: from, To: two, Piece: Pawn})
			}
		}

		if ep, ok := p.EnPassant(); ok && pawnAttack[turn][from].IsSet(ep) {
			moves = append(moves, Move{Type: EnPassant, From: from, To: ep, Piece: Pawn})
		}
	}
	return moves
}

func appendPawnAdvance(moves []Move, from, to Square, promoRank Bitboard) []Move {
	if BitMask(to)&promoRank != 0 {
		for _, promo := range promotionPieces {
			moves = append(moves, Move{Type: Promotion, From: from, To: to, Piece: Pawn, Promotion: promo})
		}
		return moves
	}
	return append(moves, Move{Type: Push, From: from, To: to, Piece: Pawn})
}

func appendPawnCapture(moves []Move, from, to Square, capture Piece, promoRank Bitboard) []Move {
	if BitMask(to)&promoRank != 0 {
		for _, promo := range promotionPieces {
			moves = append(moves, Move{Type: CapturePromotion, From: from, To: to, Piece: Pawn, Capture: capture, Promotion: promo})
		}
		return moves
	}
	return append(moves, Move{Type: Capture, From: from, To: to, Piece: Pawn, Capture: capture})
}

func genCastling(p *Position, turn Color, occ Bitboard, moves []Move) []Move {
	rank := Rank1
	kingSide, queenSide := WhiteKingSideCastle, WhiteQueenSideCastle
	if turn == Black {
		rank = Rank8
		kingSide, queenSide = BlackKingSideCastle, BlackQueenSideCastle
	}

	e, f, g, d, c, b := NewSquare(FileE, rank), NewSquare(FileF, rank), NewSquare(FileG, rank),
		NewSquare(FileD, rank), NewSquare(FileC, rank), NewSquare(FileB, rank)

	if p.Castling().IsAllowed(kingSide) && !occ.IsSet(f) && !occ.IsSet(g) {
		if !p.IsAttacked(turn, e) && !p.IsAttacked(turn, f) && !p.IsAttacked(turn, g) {
			moves = append(moves, Move{Type: KingSideCastle, From: e, To: g, Piece: King})
		}
	}
	if p.Castling().IsAllowed(queenSide) && !occ.IsSet(d) && !occ.IsSet(c) && !occ.IsSet(b) {
		if !p.IsAttacked(turn, e) && !p.IsAttacked(turn, d) && !p.IsAttacked(turn, c) {
			moves = append(moves, Move{Type: QueenSideCastle, From: e, To: c, Piece: King})
		}
	}
	return moves
}
