// Package storage persists generated podcast artifacts and hands back the
// references the podcast records carry.
package storage

import "context"

// ArtifactStore stores the audio and thumbnail outputs of a generation
// job. References are opaque strings resolved by the serving layer.
type ArtifactStore interface {
	// SaveAudio stores an encoded audio artifact and returns its reference.
	// Saving the same podcast again overwrites the previous artifact.
	SaveAudio(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error)

	// SaveThumbnail stores a podcast cover image and returns its reference.
	SaveThumbnail(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error)

	// Delete removes a stored artifact by reference. Removal is best
	// effort; a false return means the artifact may still exist.
	Delete(ctx context.Context, ref string) bool
}
