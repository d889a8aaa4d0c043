package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextLine waits (briefly) for the next output line, failing the test on timeout.
func nextLine(t *testing.T, out <-chan string) string {
	t.Helper()

	select {
	case line, ok := <-out:
		require.True(t, ok, "output channel closed unexpectedly")
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for driver output")
		return ""
	}
}

func TestUCIHandshake(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid-test", "corvidchess", eval.Material{})

	in := make(chan string)
	_, out := uci.NewDriver(ctx, e, in)

	assert.True(t, strings.HasPrefix(nextLine(t, out), "id name corvid-test"))
	assert.True(t, strings.HasPrefix(nextLine(t, out), "id author corvidchess"))
	assert.Equal(t, "option name Hash type spin default 32 min 0 max 4096", nextLine(t, out))
	assert.Equal(t, "option name Noise type spin default 0 min 0 max 1000", nextLine(t, out))
	assert.Equal(t, "option name Threads type spin default 1 min 1 max 1", nextLine(t, out))
	assert.Equal(t, "uciok", nextLine(t, out))

	in <- "isready"
	assert.Equal(t, "readyok", nextLine(t, out))

	close(in)
}

func TestUCISearchProducesBestmove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid-test", "corvidchess", eval.Material{})

	in := make(chan string)
	driver, out := uci.NewDriver(ctx, e, in)

	// Drain the handshake.
	for i := 0; i < 6; i++ {
		nextLine(t, out)
	}

	in <- "position startpos"
	in <- "go depth 2"

	var bestmove string
	for bestmove == "" {
		line := nextLine(t, out)
		if strings.HasPrefix(line, "bestmove") {
			bestmove = line
		}
	}
	assert.True(t, strings.HasPrefix(bestmove, "bestmove "))
	assert.NotEqual(t, "bestmove 0000", bestmove)

	in <- "quit"
	<-driver.Closed()
}

func TestUCIPerft(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "corvid-test", "corvidchess", eval.Material{})

	in := make(chan string)
	_, out := uci.NewDriver(ctx, e, in)

	for i := 0; i < 6; i++ {
		nextLine(t, out)
	}

	in <- "position startpos"
	in <- "go perft 1"

	var total string
	for {
		line := nextLine(t, out)
		if strings.HasPrefix(line, "Nodes searched:") {
			total = line
			break
		}
	}
	// 20 legal moves from the starting position at depth 1.
	assert.Equal(t, "Nodes searched: 20", total)

	close(in)
}
