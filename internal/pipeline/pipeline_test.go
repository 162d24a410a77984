package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rakivo/stalkr/internal/config"
	"github.com/rakivo/stalkr/internal/todomodel"
)

func TestRunListingEndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n// TODO: do it\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := config.Config{Directory: dir, Owner: "acme", Repo: "widgets", Mode: todomodel.ModeListing}
	p := New(cfg, nil)
	var out bytes.Buffer
	p.Stdout = &out
	p.Stdin = strings.NewReader("")

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "[1/1] todo's listed") {
		t.Fatalf("expected summary line in output, got: %s", out.String())
	}
}
