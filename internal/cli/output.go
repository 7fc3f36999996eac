package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/fishbone/pkg/errors"
)

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each requested format to disk and prints the
// resulting paths. A single format honours output verbatim ("-" for
// stdout); several formats share the base path derived from output.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 {
		format := p.formats[0]
		path := p.output
		if path == "" {
			path = basePath("", p.input) + "." + format
		}
		if path == "-" {
			_, err := os.Stdout.Write(p.artifacts[format])
			return nil, err
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	if p.output == "-" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(p.formats))
	}
	base := basePath(p.output, p.input)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := base + "." + format
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if data == nil {
		return fmt.Errorf("write %s: nothing rendered", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// printArtifacts reports written files in the standard layout.
func printArtifacts(paths []string) {
	for _, p := range paths {
		printFile(p)
	}
}
