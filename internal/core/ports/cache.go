package ports

import "context"

// ViewDeduper decides whether a view by viewerKey on projectID should be
// counted. Admit records the view when it returns true.
type ViewDeduper interface {
	Admit(ctx context.Context, viewerKey, projectID string) (bool, error)
}

// ReadStateStore keeps the ids of notifications a user has read.
type ReadStateStore interface {
	ReadIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
}
