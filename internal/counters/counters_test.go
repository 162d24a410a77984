package counters

import "testing"

func TestCounters(t *testing.T) {
	c := New()
	c.AddFound(5)
	c.AddProcessed(3)
	if c.Found() != 5 || c.Processed() != 3 {
		t.Fatalf("Found=%d Processed=%d", c.Found(), c.Processed())
	}
}

func TestSummary(t *testing.T) {
	c := New()
	c.AddFound(5)
	c.AddProcessed(3)
	want := "[3/5] todo's reported"
	if got := c.Summary("reported"); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestInstallInterruptHandlerStop(t *testing.T) {
	c := New()
	stop := InstallInterruptHandler(c, "reported")
	stop()
}
