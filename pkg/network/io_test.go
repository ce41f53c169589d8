package network

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

func TestReadGraphInvalidInputCoded(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed JSON",
			body: `{"nodes": [`,
		},
		{
			name: "dangling edge",
			body: `{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"ghost"}]}`,
		},
		{
			name: "duplicate node",
			body: `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("ReadGraph should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidGraph) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidGraph)
			}
		})
	}
}

func TestReadGraphFileMissing(t *testing.T) {
	_, err := ReadGraphFile(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("ReadGraphFile should fail for a missing file")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}
