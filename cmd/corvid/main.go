// corvid is a UCI chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/console"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/seekerror/logw"
)

var (
	hash    = flag.Uint("hash", 32, "Transposition table size in MB (zero disables it)")
	noise   = flag.Uint("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
	version = flag.Bool("version", false, "Print engine name and version, then exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

CORVID is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "corvid", "corvidchess", eval.Sum{eval.PSQT{}, eval.Tactics{}},
		engine.WithOptions(engine.Options{Hash: *hash, Noise: *noise}))

	if *version {
		fmt.Println(e.Name())
		return
	}

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
