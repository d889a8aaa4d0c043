// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	// * uci
	//
	//	tell engine to use the uci (universal chess interface),
	//	this will be send once as a first command after program boot
	//	to tell the engine to switch to uci mode.
	//	After receiving the uci command the engine must identify itself with the "id" command
	//	and sent the "option" commands to tell the GUI which engine settings the engine supports if any.
	//	After that the engine should sent "uciok" to acknowledge the uci mode.
	//	If no uciok is sent within a certain time period, the engine task will be killed by the GUI.

	logw.Infof(ctx, "UCI protocol initialized")

	// * id
	//	* name <x>, author <x>
	//		must be sent after receiving the "uci" command to identify the engine.

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	// * option
	//	Tells the GUI which parameters can be changed in the engine. Sent once at engine
	//	startup after the "uci" and "id" commands. The GUI builds a dialog from these and
	//	sends back "setoption" when the user changes something.

	d.out <- "option name Hash type spin default 32 min 0 max 4096"
	d.out <- "option name Noise type spin default 0 min 0 max 1000"
	d.out <- "option name Threads type spin default 1 min 1 max 1"

	// * uciok
	//
	//	Must be sent after the id and optional options to tell the GUI that the engine
	//	has sent all infos and is ready in uci mode.

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// * isready / readyok
				//
				//	Synchronizes the engine with the GUI. Must always be answered with
				//	"readyok", even while the engine is calculating.

				d.out <- "readyok"

			case "debug":
				// * debug [ on | off ]
				//
				//	Switches the debug mode of the engine on and off. Unused: this engine
				//	doesn't have an additional debug info channel beyond "info string".

			case "setoption":
				// * setoption name <id> [value <x>]
				//
				//	Sent to the engine when the user wants to change internal parameters.
				//	The name and value should not be case sensitive.

				var name, value string
				if len(args) > 1 {
					name = args[1]
				}
				if len(args) > 3 {
					value = args[3]
				}

				switch name {
				case "Hash":
					if n, err := strconv.Atoi(value); err == nil {
						d.e.SetHash(uint(n))
					}
				case "Noise":
					if n, err := strconv.Atoi(value); err == nil {
						d.e.SetNoise(uint(n))
					}
				case "Threads":
					// Lazy SMP is out of scope; accept and ignore so GUIs that always
					// probe for it don't treat the engine as broken.
				}

			case "register":
				// * register
				//
				//	Registration is not required by this engine.

			case "ucinewgame":
				// * ucinewgame
				//
				//	Sent when the next search will be from a different game. The GUI should
				//	always send "isready" afterward to wait for the engine to finish.

				d.ensureInactive(ctx)
				d.lastPosition = ""

			case "position":
				// * position [fen <fenstring> | startpos ]  moves <move1> .... <movei>
				//
				//	Sets up the position described in fenstring on the internal board and
				//	plays the moves on the internal chess board. "startpos" if the game was
				//	played from the start position.

				d.ensureInactive(ctx)

				if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
					// Continuation of game.

					moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
					for _, arg := range strings.Split(moves, " ") {
						if arg == "" || arg == "moves" {
							continue
						}

						if err := d.e.Move(ctx, arg); err != nil {
							logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
							return
						}
					}

					d.lastPosition = line
					break
				}

				// New position.

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}

				if err := d.e.Reset(ctx, position); err != nil {
					logw.Errorf(ctx, "Invalid position: %v", line)
					return
				}

				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						return
					}
				}
				d.lastPosition = line

			case "go":
				// * go
				//
				//	Starts calculating on the current position.
				//	* wtime/btime/winc/binc <x>
				//		clock state in msec, for time management.
				//	* depth <x>
				//		search x plies only.
				//	* nodes <x>
				//		search x nodes only.
				//	* movetime <x>
				//		search exactly x msec.
				//	* infinite
				//		search until "stop". Do not exit the search on its own in this mode.

				d.ensureInactive(ctx)

				if len(args) == 2 && args[0] == "perft" {
					// * go perft <depth>
					//
					//	Non-standard extension: reports a divide-style per-root-move node
					//	count at the given depth, for interactively checking move generation
					//	against the current position instead of needing a separate binary.

					depth, err := strconv.Atoi(args[1])
					if err != nil {
						logw.Errorf(ctx, "Invalid perft depth: %v", line)
						return
					}
					d.runPerft(ctx, depth)
					break
				}

				var limits search.Limits
				for i := 0; i < len(args); i++ {
					cmd := args[i]
					switch cmd {
					case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime":
						i++
						if i == len(args) {
							logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
							return
						}
						n, err := strconv.Atoi(args[i])
						if err != nil {
							logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
							return
						}

						switch cmd {
						case "wtime":
							limits.WTime = time.Millisecond * time.Duration(n)
						case "btime":
							limits.BTime = time.Millisecond * time.Duration(n)
						case "winc":
							limits.WInc = time.Millisecond * time.Duration(n)
						case "binc":
							limits.BInc = time.Millisecond * time.Duration(n)
						case "depth":
							limits.Depth = n
						case "nodes":
							limits.Nodes = uint64(n)
						case "movetime":
							limits.MoveTime = time.Millisecond * time.Duration(n)
						}

					case "infinite":
						limits.Infinite = true

					default:
						// silently ignore anything not handled, e.g. searchmoves, ponder, mate.
					}
				}

				out, err := d.e.Analyze(ctx, limits)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				// Forward ponder info. Complete search if it ends, unless infinite.

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.ponder <- pv
					}
					if !limits.Infinite {
						d.searchCompleted(ctx, last)
					}
				}()

			case "stop":
				// * stop
				//
				//	Stop calculating as soon as possible. Don't forget "bestmove".

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "ponderhit":
				// * ponderhit
				//
				//	Unsupported: this engine does not ponder, so ponderhit never arrives
				//	mid-search.

			case "quit":
				// * quit
				//
				//	Quit the program as soon as possible.

				return

			case "d":
				// * d
				//
				//	Non-standard diagnostic command: dumps the current board, FEN and
				//	Zobrist key, for interactively checking position state.

				b := d.e.Board()
				d.out <- b.String()
				d.out <- fmt.Sprintf("Fen: %v", d.e.Position())
				d.out <- fmt.Sprintf("Key: %v", b.Hash())

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			// * info
			//	The engine wants to send infos to the GUI, e.g.
			//	"info depth 2 score cp 214 time 1242 nodes 2124 nps 34928 pv e2e4 e7e5 g1f3"

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

// runPerft reports a divide-style node count for the current position: total nodes first,
// then one line per legal root move.
func (d *Driver) runPerft(ctx context.Context, depth int) {
	b := d.e.Board()
	pos := b.Position()

	var total uint64
	for _, e := range board.PerftDivide(pos, b.Turn(), depth) {
		d.out <- fmt.Sprintf("%v: %v", e.Move, e.Nodes)
		total += e.Nodes
	}
	d.out <- fmt.Sprintf("Nodes searched: %v", total)

	logw.Infof(ctx, "Perft depth=%v: %v nodes", depth, total)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			// * bestmove <move1> [ ponder <move2> ]
			//
			//	The engine has stopped searching and found the move <move> best. Must
			//	always be sent when the engine stops searching, for every "go" command.
			//	Directly before it the engine should send a final "info" with the
			//	complete search statistics.

			d.out <- printPV(pv)
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		} else {
			// No PV. Position is checkmate or stalemate.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func printPV(pv search.PV) string {
	// "info depth 2 score cp 214 time 1242 nodes 2124 nps 34928 pv e2e4 e7e5 g1f3"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if m, ok := pv.Score.MateIn(); ok {
		moves := (abs(m) + 1) / 2
		if m < 0 {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	parts = append(parts, fmt.Sprintf("hashfull %v", int(1000*pv.Hash)))
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}
