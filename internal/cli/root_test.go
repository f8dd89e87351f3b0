package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.NotEmpty(t, buf.String())
}

func TestRunRejectsBrokenConfig(t *testing.T) {
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", "--config", "does-not-exist.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestPrinterLabelsSections(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newPrinter(buf)

	p.Thinking("hm")
	p.Thinking("m")
	p.Answer("A Go ")
	p.Answer("tool.")
	p.ToolStart("read_file", `{"file_path":"README.md"}`)
	p.ToolDone("read_file", "line one\nline two")

	out := buf.String()
	require.Contains(t, out, "[thinking] hmm")
	require.Contains(t, out, "[answer] A Go tool.")
	require.Contains(t, out, `[tool read_file] {"file_path":"README.md"}`)
	require.Contains(t, out, "[tool read_file done] line one ...")
	require.Equal(t, 1, strings.Count(out, "[thinking]"))
	require.Equal(t, 1, strings.Count(out, "[answer]"))
}
