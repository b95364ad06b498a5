package ports

import "context"

// FollowRepair asks for the followers side of a single follow edge to be
// brought in line with the follower's following list.
type FollowRepair struct {
	ID         string
	FollowerID string
	FolloweeID string
}

// RepairQueue accepts repair jobs for asynchronous processing.
type RepairQueue interface {
	// Enqueue reports false when the job was dropped.
	Enqueue(job FollowRepair) bool
}

// GraphReconciler repairs asymmetric follow edges.
type GraphReconciler interface {
	RepairEdge(ctx context.Context, job FollowRepair) error
	ReconcileAll(ctx context.Context) (*ReconcileResult, error)
}

// ReconcileResult summarises a full graph scan.
type ReconcileResult struct {
	UsersScanned     int `json:"usersScanned"`
	FollowersAdded   int `json:"followersAdded"`
	FollowersRemoved int `json:"followersRemoved"`
}
