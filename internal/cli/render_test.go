package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRenderDOT(t *testing.T) {
	c := testCLI()
	input := writePipeline(t, validDoc)
	out := filepath.Join(t.TempDir(), "out.dot")

	opts := &renderOpts{output: out, format: formatDOT}
	if err := c.runRender(input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	dot := string(data)
	if !strings.Contains(dot, "digraph pipeline") {
		t.Errorf("output missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"a" -> "b"`) {
		t.Errorf("output missing edge:\n%s", dot)
	}
}

func TestRunRenderDerivedOutput(t *testing.T) {
	c := testCLI()
	input := writePipeline(t, validDoc)

	opts := &renderOpts{format: formatDOT}
	if err := c.runRender(input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	derived := strings.TrimSuffix(input, ".json") + ".dot"
	if _, err := os.Stat(derived); err != nil {
		t.Errorf("derived output %s not written: %v", derived, err)
	}
}

func TestRunRenderDetailed(t *testing.T) {
	c := testCLI()
	input := writePipeline(t, validDoc)
	out := filepath.Join(t.TempDir(), "out.dot")

	opts := &renderOpts{output: out, format: formatDOT, detailed: true}
	if err := c.runRender(input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "type: llm") {
		t.Errorf("detailed output missing node type:\n%s", data)
	}
}

func TestRunRenderInvalidPipeline(t *testing.T) {
	c := testCLI()
	input := writePipeline(t, `{"nodes": [{"id": "a", "type": "", "position": {"x": 0, "y": 0}}], "edges": []}`)

	opts := &renderOpts{format: formatDOT}
	if err := c.runRender(input, opts); err == nil {
		t.Fatal("runRender() on invalid pipeline did not fail")
	}
}

func TestValidateFormat(t *testing.T) {
	if err := validateFormat(formatDOT); err != nil {
		t.Errorf("validateFormat(dot) = %v", err)
	}
	if err := validateFormat(formatSVG); err != nil {
		t.Errorf("validateFormat(svg) = %v", err)
	}
	if err := validateFormat("png"); err == nil {
		t.Error("validateFormat(png) did not fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		format string
		want   string
	}{
		{"explicit", "diagram.svg", "p.json", "svg", "diagram.svg"},
		{"stdout", "-", "p.json", "dot", ""},
		{"derived", "", "graphs/p.json", "dot", "graphs/p.dot"},
		{"derived no extension", "", "pipeline", "dot", "pipeline.dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.input, tt.format); got != tt.want {
				t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, got, tt.want)
			}
		})
	}
}
