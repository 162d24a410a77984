package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rakivo/stalkr/internal/todomodel"
)

func pathOf(todomodel.FileID) string { return "file.go" }

func TestSelectIndicesAll(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("a\n"), &out, pathOf)
	idx := p.selectIndices([]todomodel.Todo{{Title: "one"}, {Title: "two"}})
	if len(idx) != 2 {
		t.Fatalf("idx = %v, want 2 items", idx)
	}
}

func TestSelectIndicesSkip(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("s\n"), &out, pathOf)
	idx := p.selectIndices([]todomodel.Todo{{Title: "one"}})
	if idx != nil {
		t.Fatalf("idx = %v, want nil", idx)
	}
}

func TestSelectIndicesCommaList(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("1,3\n"), &out, pathOf)
	idx := p.selectIndices([]todomodel.Todo{{Title: "a"}, {Title: "b"}, {Title: "c"}})
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Fatalf("idx = %v, want [0 2]", idx)
	}
}

func TestSelectIndicesHelpThenAll(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("h\na\n"), &out, pathOf)
	idx := p.selectIndices([]todomodel.Todo{{Title: "one"}})
	if len(idx) != 1 {
		t.Fatalf("idx = %v, want 1 item", idx)
	}
	if !strings.Contains(out.String(), "Selection commands") {
		t.Fatalf("expected help text to be printed")
	}
}

func TestSelectIndicesInvalidThenValid(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("bogus\n2\n"), &out, pathOf)
	idx := p.selectIndices([]todomodel.Todo{{Title: "a"}, {Title: "b"}})
	if len(idx) != 1 || idx[0] != 1 {
		t.Fatalf("idx = %v, want [1]", idx)
	}
}

func TestParseEditCommand(t *testing.T) {
	cases := []struct {
		cmd       string
		n         int
		wantIdx   int
		wantFlags string
		wantOK    bool
	}{
		{"2t", 3, 1, "t", true},
		{"1d", 3, 0, "d", true},
		{"3td", 3, 2, "td", true},
		{"3dt", 3, 2, "dt", true},
		{"4t", 3, 0, "", false},
		{"t", 3, 0, "", false},
		{"2x", 3, 0, "", false},
	}
	for _, c := range cases {
		idx, flags, ok := parseEditCommand(c.cmd, c.n)
		if ok != c.wantOK {
			t.Fatalf("parseEditCommand(%q,%d) ok = %v, want %v", c.cmd, c.n, ok, c.wantOK)
		}
		if ok && (idx != c.wantIdx || flags != c.wantFlags) {
			t.Fatalf("parseEditCommand(%q,%d) = (%d,%q), want (%d,%q)", c.cmd, c.n, idx, flags, c.wantIdx, c.wantFlags)
		}
	}
}

func TestSelectIndicesEditThenSelect(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("1t\nnew title\n1\n"), &out, pathOf)
	todos := []todomodel.Todo{{Title: "old title"}}
	idx := p.selectIndices(todos)
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("idx = %v, want [0]", idx)
	}
	if todos[0].Title != "new title" {
		t.Fatalf("Title = %q, want %q", todos[0].Title, "new title")
	}
	if !strings.Contains(out.String(), "enter new title") {
		t.Fatalf("expected edit prompt to be printed")
	}
}

func TestRunReportingForwardsSelection(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("a\n"), &out, pathOf)

	in := make(chan todomodel.ReportingBatch, 1)
	result := make(chan todomodel.ReportingBatch, 1)
	in <- todomodel.ReportingBatch{File: 1, Todos: []todomodel.Todo{{Title: "x"}}}
	close(in)

	p.RunReporting(in, result)
	close(result)

	var got []todomodel.ReportingBatch
	for v := range result {
		got = append(got, v)
	}
	if len(got) != 1 || len(got[0].Todos) != 1 {
		t.Fatalf("got %+v", got)
	}
	if p.Processed() != 1 {
		t.Fatalf("Processed() = %d, want 1", p.Processed())
	}
}

func TestRunPurgingForwardsSelection(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("a\n"), &out, pathOf)

	in := make(chan todomodel.ApplyPurges, 1)
	result := make(chan todomodel.ApplyPurges, 1)
	in <- todomodel.ApplyPurges{File: 1, Purges: []todomodel.Purge{{Tag: todomodel.Tag{IssueNumber: 1}}}}
	close(in)

	p.RunPurging(in, result)
	close(result)

	var got []todomodel.ApplyPurges
	for v := range result {
		got = append(got, v)
	}
	if len(got) != 1 || len(got[0].Purges) != 1 {
		t.Fatalf("got %+v", got)
	}
}
