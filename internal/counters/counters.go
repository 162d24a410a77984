// Package counters tracks the two run-wide totals stalkr reports on exit,
// how many TODOs were found and how many were fully processed, and
// installs the SIGINT handler that prints them early when a run is
// interrupted.
package counters

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
)

// Counters holds the run's found/processed totals.
type Counters struct {
	found     atomic.Int64
	processed atomic.Int64
}

// New returns a zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// AddFound increments the found total by n.
func (c *Counters) AddFound(n int64) { c.found.Add(n) }

// AddProcessed increments the processed total by n.
func (c *Counters) AddProcessed(n int64) { c.processed.Add(n) }

// Found returns the current found total.
func (c *Counters) Found() int64 { return c.found.Load() }

// Processed returns the current processed total.
func (c *Counters) Processed() int64 { return c.processed.Load() }

// Summary renders the one-line summary stalkr prints on exit, e.g.
// "[3/5] todo's reported".
func (c *Counters) Summary(verb string) string {
	return fmt.Sprintf("[%d/%d] todo's %s", c.Processed(), c.Found(), verb)
}

// InstallInterruptHandler installs a SIGINT handler that prints the
// current summary and exits 0. It returns a function to stop watching for
// the signal, for callers that complete normally and want to tear the
// handler down instead of leaving it armed for the rest of the process.
func InstallInterruptHandler(c *Counters, verb string) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			fmt.Println()
			fmt.Println(c.Summary(verb))
			os.Exit(0)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
