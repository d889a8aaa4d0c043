// corvid-live is an adaptor for using a DGT EBoard via LiveChess as a UCI engine. The adaptor
// allows use of DGT EBoards in chess programs, such as CuteChess, by pretending to be an engine.
package main

import (
	"context"
	"flag"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

var (
	serial = flag.String("serial", "auto", "Board selection by serial number (default: auto)")
	flip   = flag.Bool("flip", false, "Flip board")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	id := livechess.EBoardSerial(*serial)
	if id == "auto" {
		auto, err := livechess.AutoDetect(ctx, livechess.DefaultClient)
		if err != nil {
			logw.Exitf(ctx, "Watch failed to autodetect board: %v", err)
		}
		id = auto
	}

	client, events, err := livechess.NewFeed(ctx, id)
	if err != nil {
		logw.Exitf(ctx, "Feed for %v failed: %v", id, err)
	}
	if *flip {
		if err := client.Flip(ctx, true); err != nil {
			logw.Exitf(ctx, "Flip board %v failed: %v", id, err)
		}
	}
	if err := client.Setup(ctx, fen.Initial); err != nil {
		logw.Exitf(ctx, "Setup board %v failed: %v", id, err)
	}

	a := newAdaptor(ctx, client, events)

	e := engine.New(ctx, "corvid-live", "corvidchess", eval.Material{},
		engine.WithLauncher(a),
		engine.WithOptions(engine.Options{Depth: 1}))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

// adaptor is a search.Launcher that reports the move actually played on a physical
// DGT EBoard instead of computing one, so the board itself drives both sides of the
// game while a GUI observes it through the UCI protocol.
type adaptor struct {
	client livechess.FeedClient

	last  atomic.Pointer[livechess.EBoardEventResponse] // last event with board FEN and move list
	pulse *iox.Pulse
}

func newAdaptor(ctx context.Context, client livechess.FeedClient, events <-chan livechess.EBoardEventResponse) *adaptor {
	ret := &adaptor{
		client: client,
		pulse:  iox.NewPulse(),
	}
	go ret.process(ctx, events)
	return ret
}

func (a *adaptor) Launch(ctx context.Context, b *board.Board, table tt.Table, evaluator eval.Evaluator, limits search.Limits) (search.Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{quit: make(chan struct{}), done: make(chan struct{})}
	go h.process(ctx, a, b, out)

	return h, out
}

type handle struct {
	quit, done chan struct{}
	closeOnce  sync.Once

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, a *adaptor, b *board.Board, out chan search.PV) {
	defer close(out)
	defer close(h.done)

	// (1) Generate possible next legal options, keyed by the resulting board FEN.

	candidates := map[string]board.Move{}
	for _, m := range b.Position().LegalMoves(b.Turn()) {
		b.PushMove(m)
		next := strings.Split(fen.Encode(b.Position(), b.Turn(), 0, 0), " ")[0]
		candidates[next] = m
		b.PopMove()
	}

	if len(candidates) == 0 {
		return // checkmate or stalemate: no move to report.
	}

	// (2) Wait for the physical board to match one of them.

	for {
		if last := a.last.Load(); last != nil {
			if m, ok := candidates[last.Board]; ok {
				pv := search.PV{Moves: []board.Move{m}}
				h.mu.Lock()
				h.pv = pv
				h.mu.Unlock()
				out <- pv
				return
			}
		}

		select {
		case <-a.pulse.Chan():
			// ok: try again
		case <-ctx.Done():
			return
		case <-h.quit:
			return
		}
	}
}

func (h *handle) Halt() search.PV {
	h.closeOnce.Do(func() { close(h.quit) })
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}

func (a *adaptor) process(ctx context.Context, events <-chan livechess.EBoardEventResponse) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			if len(event.San) > 0 {
				a.last.Store(&event)
				a.pulse.Emit()
			}

		case <-ctx.Done():
			return
		}
	}
}
