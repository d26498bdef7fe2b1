package domain

import "context"

// ArtifactCatalog receives one append per successfully completed task so the
// wider application can display the artifact. Pure side effect; failures are
// logged by the caller, never surfaced.
type ArtifactCatalog interface {
	Append(ctx context.Context, artifact GeneratedArtifact) error
}

// GeneratedArtifact is the catalog entry recorded for a completed task.
type GeneratedArtifact struct {
	TaskID string
	UserID string
	Kind   TaskKind
	URL    string
}
