package search

import (
	"context"
	"sync"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/order"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a Launcher implementing iterative deepening with an aspiration window
// re-centered on each iteration's previous score.
type Iterative struct{}

func (it Iterative) Launch(ctx context.Context, b *board.Board, table tt.Table, evaluator eval.Evaluator, limits Limits) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, table, evaluator, b, limits, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, table tt.Table, evaluator eval.Evaluator, b *board.Board, limits Limits, out chan PV) {
	defer h.init.Close()
	defer close(out)

	soft, hard, hasTimeLimit := timeBudget(limits, b.Turn())

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()
	if hasTimeLimit && hard > 0 {
		timer := time.AfterFunc(hard, func() { h.quit.Close() })
		defer timer.Stop()
	}

	r := &run{
		b:       b,
		table:   table,
		eval:    evaluator,
		history: &order.History{},
		killers: &order.Killers{},
	}

	maxDepth := MaxDepth
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	searchStart := time.Now()
	var score eval.Score

	for depth := 1; !h.quit.IsClosed() && depth <= maxDepth; depth++ {
		if limits.Nodes > 0 && r.nodes >= limits.Nodes {
			return
		}

		start := time.Now()
		s, moves := aspirate(wctx, r, depth, score)

		if contextx.IsCancelled(wctx) {
			return // tentative result from an aborted iteration is discarded; last PV stands.
		}

		score = s
		pv := PV{
			Depth: depth,
			Moves: moves,
			Score: s,
			Nodes: r.nodes,
			Time:  time.Since(start),
			Hash:  table.Used(),
		}

		logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()

		if limits.Nodes > 0 && r.nodes >= limits.Nodes {
			return
		}
		if pv.Score.IsMate() {
			return // forced mate found; no point deepening further.
		}
		if hasTimeLimit && soft > 0 && time.Since(searchStart) >= soft {
			return // halt: exceeded soft time limit, don't start a new iteration.
		}
	}
}

func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}

// aspirate runs one iterative-deepening depth through an aspiration window, doubling the
// window on fail-high/fail-low until it contains the true score. Depths below 4 use the
// full window outright, since the previous iteration's score is not a reliable center yet.
func aspirate(ctx context.Context, r *run, depth int, prev eval.Score) (eval.Score, []board.Move) {
	if depth < 4 {
		return r.negamax(ctx, 0, depth, eval.NegInf, eval.Inf, true)
	}

	delta := eval.Score(25)
	for {
		alpha := eval.Max(eval.NegInf, prev-delta)
		beta := eval.Min(eval.Inf, prev+delta)

		score, moves := r.negamax(ctx, 0, depth, alpha, beta, true)
		if contextx.IsCancelled(ctx) {
			return score, moves
		}
		if score <= alpha && alpha > eval.NegInf {
			delta *= 2
			continue
		}
		if score >= beta && beta < eval.Inf {
			delta *= 2
			continue
		}
		return score, moves
	}
}
