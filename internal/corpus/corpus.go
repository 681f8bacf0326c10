// Package corpus builds and searches the reference-document index used
// for retrieval-augmented answers.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Sentinel is the single fragment used when no documents could be
// loaded. The index is still built over it so searches always succeed
// structurally.
const Sentinel = "No se pudo cargar el documento de referencia o procesar la información. Por favor, contacte a soporte."

// Fragments shorter than this (after trimming) carry too little context
// to be worth indexing.
const minFragmentLen = 20

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LoadDir extracts indexable fragments from every .txt and .md file
// under dir: each line is a candidate fragment, kept when longer than 20
// characters after trimming. Returns the sentinel fragment when the
// directory yields nothing usable.
func LoadDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("could not read docs directory", "dir", dir, "error", err)
		return []string{Sentinel}
	}

	var fragments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("could not read document", "path", path, "error", err)
			fragments = append(fragments, fmt.Sprintf("Error al cargar información de %s.", entry.Name()))
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			if utf8.RuneCountInString(trimmed) > minFragmentLen {
				fragments = append(fragments, trimmed)
			}
		}
	}

	if len(fragments) == 0 {
		return []string{Sentinel}
	}
	return fragments
}
