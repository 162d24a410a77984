package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rakivo/stalkr/internal/fm"
	"github.com/rakivo/stalkr/internal/todomodel"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestWalkReportingFindsUntaggedOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n// TODO: untagged one\nfunc f() {}\n")
	writeFile(t, dir, "b.go", "package b\n// TODO(#3): already tagged\n")

	manager := fm.New()
	res, err := Walk(Options{Root: dir, Mode: todomodel.ModeReporting}, manager)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Found != 1 {
		t.Fatalf("Found = %d, want 1", res.Found)
	}
	if len(res.Batches) != 1 {
		t.Fatalf("len(Batches) = %d, want 1", len(res.Batches))
	}
	rb, ok := res.Batches[0].(todomodel.ReportingBatch)
	if !ok {
		t.Fatalf("expected a ReportingBatch, got %T", res.Batches[0])
	}
	if len(rb.Todos) != 1 || rb.Todos[0].Title != "untagged one" {
		t.Fatalf("unexpected todos: %+v", rb.Todos)
	}
}

func TestWalkPurgingFindsTaggedOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n// TODO: untagged one\n")
	writeFile(t, dir, "b.go", "package b\n// TODO(#3): already tagged\n")

	manager := fm.New()
	res, err := Walk(Options{Root: dir, Mode: todomodel.ModePurging}, manager)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Batches) != 1 {
		t.Fatalf("len(Batches) = %d, want 1", len(res.Batches))
	}
	pb, ok := res.Batches[0].(todomodel.PurgingBatch)
	if !ok {
		t.Fatalf("expected a PurgingBatch, got %T", res.Batches[0])
	}
	if len(pb.Todos) != 1 || pb.Todos[0].IssueNumber != 3 {
		t.Fatalf("unexpected todos: %+v", pb.Todos)
	}
}

func TestWalkSkipsGitDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeFile(t, dir, ".git/ignored.go", "// TODO: inside git dir\n")
	writeFile(t, dir, "real.go", "// TODO: real one\n")

	manager := fm.New()
	res, err := Walk(Options{Root: dir, Mode: todomodel.ModeListing}, manager)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Found != 1 {
		t.Fatalf("Found = %d, want 1 (only the non-.git file)", res.Found)
	}
}

func TestWalkSkipsBinaryExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "image.png", "// TODO: should be ignored\n")

	manager := fm.New()
	res, err := Walk(Options{Root: dir, Mode: todomodel.ModeListing}, manager)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Found != 0 {
		t.Fatalf("Found = %d, want 0", res.Found)
	}
}

func TestWalkColumnZeroVsIndented(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "// TODO: column zero\n    // TODO: indented\n")

	manager := fm.New()
	res, err := Walk(Options{Root: dir, Mode: todomodel.ModeListing}, manager)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	lb := res.Batches[0].(todomodel.ListingBatch)
	if len(lb.Todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(lb.Todos))
	}
	byTitle := map[string]todomodel.Todo{}
	for _, td := range lb.Todos {
		byTitle[td.Title] = td
	}
	if !byTitle["column zero"].ColumnZero {
		t.Fatalf("expected column-zero TODO to be marked ColumnZero")
	}
	if byTitle["indented"].ColumnZero {
		t.Fatalf("expected indented TODO to not be marked ColumnZero")
	}
}
