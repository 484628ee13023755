package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore implements ObjectStore on the local filesystem. Objects are
// written under a base directory and served back through the server's
// /files static route, so the public URL is baseURL + /files/ + name.
type LocalStore struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStore creates a new local filesystem store
func NewLocalStore(baseDir, baseURL string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// BaseDir returns the directory objects are written to
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Store writes content under the base directory
func (s *LocalStore) Store(ctx context.Context, name string, content []byte) (StoredObject, error) {
	fullPath := filepath.Join(s.baseDir, name)
	if err := s.validatePath(fullPath); err != nil {
		return StoredObject{}, err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return StoredObject{}, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File stored",
		zap.String("object", name),
		zap.Int("size", len(content)))

	return StoredObject{
		Name:      name,
		PublicURL: fmt.Sprintf("%s/files/%s", s.baseURL, name),
	}, nil
}

// Delete removes a stored object
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	fullPath := filepath.Join(s.baseDir, name)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// validatePath checks that the path stays within baseDir
func (s *LocalStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}
