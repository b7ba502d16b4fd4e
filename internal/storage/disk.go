package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/2beens/workoutlog/internal/telemetry/tracing"
	"github.com/2beens/workoutlog/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// DiskBackend keeps each artifact as a file within rootPath.
type DiskBackend struct {
	rootPath string
	mutex    sync.RWMutex
}

func NewDiskBackend(rootPath string) (*DiskBackend, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	if err := pkg.EnsureDir(rootPath); err != nil {
		return nil, fmt.Errorf("ensure root dir [%s]: %w", rootPath, err)
	}
	return &DiskBackend{
		rootPath: rootPath,
	}, nil
}

func (d *DiskBackend) path(name string) string {
	return filepath.Join(d.rootPath, name)
}

func (d *DiskBackend) Read(ctx context.Context, name string) (_ []byte, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "diskBackend.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))

	if err := validateName(name); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact [%s]: %w", name, err)
	}
	return data, nil
}

// Write writes to a temp file in the same dir and renames it over the artifact,
// so a crash mid-write never leaves a truncated artifact behind.
func (d *DiskBackend) Write(ctx context.Context, name string, data []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "diskBackend.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("artifact", name))
	span.SetAttributes(attribute.Int("size", len(data)))

	if err := validateName(name); err != nil {
		return err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	// root could have been removed while running
	if err := pkg.EnsureDir(d.rootPath); err != nil {
		return fmt.Errorf("ensure root dir: %w", err)
	}

	if err := WriteFileAtomic(d.path(name), data); err != nil {
		return fmt.Errorf("write artifact [%s]: %w", name, err)
	}

	log.Tracef("disk backend: artifact [%s] written, %d bytes", name, len(data))
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
