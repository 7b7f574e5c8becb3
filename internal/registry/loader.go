package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inferd/pkg/types"
)

// sidecar is the optional `<model>.json` file next to a weights file. It
// carries metadata the weights file itself does not expose.
type sidecar struct {
	Name      string `json:"name"`
	Family    string `json:"family"`
	Quant     string `json:"quant"`
	GroupSize int    `json:"group_size"`
	Bits      int    `json:"bits"`
	HiddenDim int    `json:"hidden_dim"`
}

// GGUFScanner discovers *.gguf model files in a directory.
type GGUFScanner struct{}

// NewGGUFScanner returns a scanner for gguf model directories.
func NewGGUFScanner() *GGUFScanner { return &GGUFScanner{} }

// Scan walks dir (non-recursive) for *.gguf files and builds a registry from
// filenames. ID is the full filename (including extension); Path is the
// absolute file path. If a sibling `<filename>.json` sidecar exists its
// metadata is merged in; a malformed sidecar is skipped rather than failing
// the whole scan.
func (s *GGUFScanner) Scan(dir string) ([]types.Model, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		// Use full filename as ID (e.g., "llama-3.1-8b-q4_k_m.gguf")
		p := filepath.Join(abs, name)
		m := types.Model{ID: name, Name: name, Path: p}
		applySidecar(&m, p+".json")
		models = append(models, m)
	}
	return models, nil
}

// LoadDir scans dir with the default gguf scanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}

// applySidecar merges metadata from path into m if the sidecar exists and parses.
func applySidecar(m *types.Model, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return
	}
	if sc.Name != "" {
		m.Name = sc.Name
	}
	m.Family = sc.Family
	m.Quant = sc.Quant
	m.GroupSize = sc.GroupSize
	m.Bits = sc.Bits
	m.HiddenDim = sc.HiddenDim
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/llm
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
