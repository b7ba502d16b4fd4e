// Package storage holds the backends persisting the named artifacts (records, goal)
// of the workout log. Every artifact is an opaque blob, rewritten as a whole.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrArtifactNotFound = errors.New("artifact not found")

type Backend interface {
	// Read returns ErrArtifactNotFound when the artifact was never written.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the whole artifact. Artifacts are never removed, an empty
	// sequence is stored as such.
	Write(ctx context.Context, name string, data []byte) error
}

func validateName(name string) error {
	if name == "" {
		return errors.New("artifact name empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return nil
}
