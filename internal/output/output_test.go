package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Icons(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status", func(w *Writer) { w.Status("*", "checking") }, "* checking\n"},
		{"status without icon", func(w *Writer) { w.Status("", "indented") }, "   indented\n"},
		{"statusf", func(w *Writer) { w.Statusf(">", "run %d", 3) }, "> run 3\n"},
		{"success", func(w *Writer) { w.Successf("created %s", "config") }, "✓ created config\n"},
		{"warning", func(w *Writer) { w.Warningf("%d runs pruned", 2) }, "! 2 runs pruned\n"},
		{"error", func(w *Writer) { w.Errorf("cannot open %s", "db") }, "✗ cannot open db\n"},
		{"newline", func(w *Writer) { w.Newline() }, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(New(buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Code_IndentsEachLine(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Code("version: 1\nruntime:\n  binary: docker\n")

	assert.Equal(t, "\n  version: 1\n  runtime:\n    binary: docker\n\n", buf.String())
}

func TestWriter_Table_AlignsColumns(t *testing.T) {
	// Given: rows of different widths
	buf := &bytes.Buffer{}

	// When: printing a table
	New(buf).Table([]string{"ID", "VERDICT"}, [][]string{
		{"12", "ready"},
		{"3", "not ready"},
	})

	// Then: header and rows are on their own lines, columns aligned
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "VERDICT")
	assert.Equal(t, strings.Index(lines[0], "VERDICT"), strings.Index(lines[1], "ready"))
	assert.Equal(t, strings.Index(lines[1], "ready"), strings.Index(lines[2], "not ready"))
}

func TestWriter_WithColor_KeepsMessage(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).WithColor(true).Success("done")

	assert.Contains(t, buf.String(), "done")
}
