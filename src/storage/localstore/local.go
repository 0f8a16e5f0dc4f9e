// Package localstore is a filesystem-backed artifact store for
// single-node deployments without object storage.
package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aipod/src/log"
)

// refPrefix marks references produced by this store. The serving layer
// maps it onto the base directory.
const refPrefix = "/storage/podcasts"

type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %v", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) SaveAudio(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error) {
	return s.save(data, fmt.Sprintf("user_%d/%s/audio.%s", ownerID, podcastID, format))
}

func (s *LocalStore) SaveThumbnail(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error) {
	return s.save(data, fmt.Sprintf("user_%d/%s/thumbnail.%s", ownerID, podcastID, format))
}

func (s *LocalStore) save(data []byte, rel string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %v", err)
	}
	return refPrefix + "/" + rel, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) bool {
	rel, ok := strings.CutPrefix(ref, refPrefix+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		log.Info("skipping delete of invalid artifact reference", "ref", ref)
		return false
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.Remove(path); err != nil {
		log.Error(err, "failed to delete artifact", "ref", ref)
		return false
	}
	return true
}

// ReadFile resolves a reference and returns the stored artifact.
func (s *LocalStore) ReadFile(ref string) ([]byte, error) {
	rel, ok := strings.CutPrefix(ref, refPrefix+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil, fmt.Errorf("invalid artifact reference: %s", ref)
	}
	return os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
}
