package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pipecheck/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	input := `{
		"nodes": [
			{"id": "a", "type": "customInput", "position": {"x": 100, "y": 50}, "data": {"label": "In"}},
			{"id": "b", "type": "llm", "position": {"x": 300, "y": 50}}
		],
		"edges": [
			{"id": "e1", "source": "a", "target": "b", "sourceHandle": "a-out", "targetHandle": "b-in"}
		]
	}`

	p, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if len(p.Nodes) != 2 || len(p.Edges) != 1 {
		t.Fatalf("ReadJSON() parsed %d nodes, %d edges", len(p.Nodes), len(p.Edges))
	}
	if p.Nodes[0].ID != "a" || p.Nodes[0].Type != "customInput" {
		t.Errorf("node 0 = %+v", p.Nodes[0])
	}
	if p.Nodes[0].Position.X != 100 || p.Nodes[0].Position.Y != 50 {
		t.Errorf("node 0 position = %+v", p.Nodes[0].Position)
	}
	if p.Nodes[0].Data["label"] != "In" {
		t.Errorf("node 0 data = %v", p.Nodes[0].Data)
	}
	if p.Edges[0].Source != "a" || p.Edges[0].Target != "b" {
		t.Errorf("edge 0 = %+v", p.Edges[0])
	}
	if p.Edges[0].SourceHandle != "a-out" || p.Edges[0].TargetHandle != "b-in" {
		t.Errorf("edge 0 handles = %+v", p.Edges[0])
	}
}

func TestReadJSONIgnoresUnknownFields(t *testing.T) {
	input := `{
		"nodes": [{"id": "a", "type": "llm", "position": {"x": 0, "y": 0}, "selected": true, "dragging": false}],
		"edges": [],
		"viewport": {"zoom": 1.5}
	}`

	p, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(p.Nodes) != 1 {
		t.Errorf("ReadJSON() parsed %d nodes, want 1", len(p.Nodes))
	}
}

func TestReadJSONEmptyDocument(t *testing.T) {
	p, err := ReadJSON(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(p.Nodes) != 0 || len(p.Edges) != 0 {
		t.Errorf("ReadJSON() = %+v, want empty pipeline", p)
	}
}

func TestReadJSONMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"truncated", `{"nodes": [`},
		{"not json", `nodes and edges`},
		{"wrong type", `{"nodes": "not an array"}`},
		{"trailing data", `{"nodes": []} {"more": true}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadJSON() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want INVALID_INPUT", errors.GetCode(err))
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")
	content := `{"nodes": [{"id": "a", "type": "llm", "position": {"x": 0, "y": 0}}], "edges": []}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(p.Nodes) != 1 {
		t.Errorf("ReadFile() parsed %d nodes, want 1", len(p.Nodes))
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("ReadFile() should fail for missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}
