// Package wasmrw is the entry point for rewriting a Wasm binary on disk:
// decode a file path into a Module, edit it through a Facade, then encode
// it back out to a (possibly different) file path.
package wasmrw

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/wasm/binary"
	"github.com/wasmrw/wasmrw/semantics"
)

// Rewriter binds a decoded Module to the path it came from, so that Save
// knows whether its destination is the same file (overwrite in place) or a
// different one (remove-then-write).
type Rewriter struct {
	*semantics.Facade
	src string
}

// Open decodes the Wasm binary at path and returns a Rewriter over it. The
// file is opened read-only and closed before Open returns; no handle is
// held past decode.
func Open(path string, features api.CoreFeatures) (*Rewriter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bin, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	m, err := binary.DecodeModule(bin, features)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Rewriter{Facade: semantics.New(m), src: path}, nil
}

// Save encodes the Rewriter's Module and writes it to path, truncating.
// If path exists and is not the file Open read from, it is removed first.
func (r *Rewriter) Save(path string) error {
	bin := binary.EncodeModule(r.Module())

	if _, err := os.Stat(path); err == nil {
		if differentFile(r.src, path) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("save %s: %w", path, err)
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("save %s: %w", path, err)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer out.Close()

	if _, err := out.Write(bin); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func differentFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a != b
	}
	return absA != absB
}
