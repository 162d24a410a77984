// Package prompt is the Prompter stage: a single-threaded terminal
// mediator that shows the user each file's batch of TODOs (or confirmed
// purges) and lets them select which ones to act on, edit, or skip
// entirely, before forwarding the filtered selection downstream.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rakivo/stalkr/internal/todomodel"
)

const (
	allKey  = "a"
	skipKey = "s"
	helpKey = "h"
)

const helpText = `Selection commands:
  a            select everything in this file
  s            skip this file entirely
  1,3,5        select only the listed items (1-based)
  <n>t         edit the title of item n before selecting it
  <n>d         edit the description of item n before selecting it
  <n>td        edit both title and description of item n
  h            show this help
`

// pathResolver maps a FileID to a display path.
type pathResolver func(todomodel.FileID) string

// Prompter drives the interactive selection loop over an injected reader
// and writer, matching the teacher's FileReader/FileWriter seam so tests
// never touch a real terminal.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	pathOf pathResolver

	processed int
}

// New constructs a Prompter reading commands from in and writing output to
// out.
func New(in io.Reader, out io.Writer, pathOf pathResolver) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, pathOf: pathOf}
}

// Processed returns how many items the user has confirmed across all
// files handled so far.
func (p *Prompter) Processed() int { return p.processed }

// RunListing prints every batch without asking for input; Listing mode
// never touches a tracker.
func (p *Prompter) RunListing(batches <-chan todomodel.ListingBatch) {
	for b := range batches {
		p.printHeader(b.File)
		p.printTable(b.Todos)
		p.processed += len(b.Todos)
	}
}

// RunReporting asks the user, per file, which untagged TODOs to file
// issues for, forwarding the selection on out.
func (p *Prompter) RunReporting(batches <-chan todomodel.ReportingBatch, out chan<- todomodel.ReportingBatch) {
	for b := range batches {
		p.printHeader(b.File)
		selected := p.selectTodos(b.Todos)
		p.processed += len(selected)
		if len(selected) > 0 {
			out <- todomodel.ReportingBatch{File: b.File, Todos: selected}
		}
	}
}

// RunPurging asks the user, per file, which already-confirmed-closed
// purges to actually apply, forwarding the selection on out.
func (p *Prompter) RunPurging(batches <-chan todomodel.ApplyPurges, out chan<- todomodel.ApplyPurges) {
	for b := range batches {
		p.printHeader(b.File)
		todos := make([]todomodel.Todo, len(b.Purges))
		for i, pg := range b.Purges {
			todos[i] = pg.Tag.Todo
		}
		idx := p.selectIndices(todos)
		p.processed += len(idx)
		if len(idx) == 0 {
			continue
		}
		selected := make([]todomodel.Purge, 0, len(idx))
		for _, i := range idx {
			selected = append(selected, b.Purges[i])
		}
		out <- todomodel.ApplyPurges{File: b.File, Purges: selected}
	}
}

func (p *Prompter) printHeader(file todomodel.FileID) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, color.CyanString(p.pathOf(file)))
}

func (p *Prompter) printTable(todos []todomodel.Todo) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"#", "Line", "Title"})
	for i, t := range todos {
		table.Append([]string{strconv.Itoa(i + 1), strconv.Itoa(t.Loc.Line), t.Title})
	}
	table.Render()

	for i, t := range todos {
		if len(t.Description) == 0 {
			continue
		}
		fmt.Fprintf(p.out, "%d.   └── description:\n", i+1)
		for _, line := range t.Description {
			fmt.Fprintf(p.out, "         %s\n", line)
		}
	}
}

// selectTodos runs the interactive loop and returns the subset the user
// chose, with any title/description edits applied.
func (p *Prompter) selectTodos(todos []todomodel.Todo) []todomodel.Todo {
	idx := p.selectIndices(todos)
	out := make([]todomodel.Todo, 0, len(idx))
	for _, i := range idx {
		out = append(out, todos[i])
	}
	return out
}

// selectIndices is the shared selection loop used by both Reporting and
// Purging: print the table, read a command, and loop until the user picks
// a concrete selection (possibly empty, via "s").
func (p *Prompter) selectIndices(todos []todomodel.Todo) []int {
	p.printTable(todos)
	for {
		fmt.Fprint(p.out, "select> ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return nil
		}
		cmd := strings.TrimSpace(line)

		switch {
		case cmd == skipKey:
			return nil
		case cmd == allKey:
			all := make([]int, len(todos))
			for i := range all {
				all[i] = i
			}
			return all
		case cmd == helpKey:
			fmt.Fprint(p.out, helpText)
			continue
		case cmd == "":
			continue
		}

		if idx, flags, ok := parseEditCommand(cmd, len(todos)); ok {
			p.editTodo(&todos[idx], flags)
			p.printTable(todos)
			continue
		}

		if idx, ok := parseIndexList(cmd, len(todos)); ok {
			return idx
		}

		fmt.Fprintf(p.out, "unrecognized selection %q; type 'h' for help\n", cmd)
	}
}

// parseIndexList parses a comma-separated 1-based index list like "1,3,5".
func parseIndexList(cmd string, n int) ([]int, bool) {
	parts := strings.Split(cmd, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 1 || v > n {
			return nil, false
		}
		out = append(out, v-1)
	}
	sort.Ints(out)
	return out, len(out) > 0
}

// parseEditCommand parses "<n>t", "<n>d", "<n>td", or "<n>dt": an edit
// request for item n's title and/or description. It reports the 0-based
// index of the item to edit and which fields the suffix names; the caller
// applies the edit with editTodo and re-displays the table, matching the
// teacher's inline-edit flow (editing never auto-selects the item).
func parseEditCommand(cmd string, n int) (int, string, bool) {
	i := 0
	for i < len(cmd) && cmd[i] >= '0' && cmd[i] <= '9' {
		i++
	}
	if i == 0 || i == len(cmd) {
		return 0, "", false
	}
	suffix := cmd[i:]
	if suffix != "t" && suffix != "d" && suffix != "td" && suffix != "dt" {
		return 0, "", false
	}
	v, err := strconv.Atoi(cmd[:i])
	if err != nil || v < 1 || v > n {
		return 0, "", false
	}
	return v - 1, suffix, true
}

// editTodo reads replacement text from p.in for the fields named in flags
// ("t", "d", "td", or "dt") and applies it to t in place.
func (p *Prompter) editTodo(t *todomodel.Todo, flags string) {
	if strings.Contains(flags, "t") {
		fmt.Fprint(p.out, "enter new title: ")
		line, _ := p.in.ReadString('\n')
		t.Title = strings.TrimSpace(line)
	}
	if strings.Contains(flags, "d") {
		fmt.Fprint(p.out, "enter new description (leave empty to remove): ")
		line, _ := p.in.ReadString('\n')
		desc := strings.TrimSpace(line)
		if desc == "" {
			t.Description = nil
		} else {
			t.Description = todomodel.Description{desc}
		}
	}
}
