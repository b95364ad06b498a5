// Package metrics defines and registers all custom Prometheus metrics for the
// ProjectLink API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto, and exposed on /metrics by the echoprometheus handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "projectlink"

// ── Social graph metrics ─────────────────────────────────────────────────────

// SocialActionsTotal counts social mutations.
// Labels:
//   - action: follow, unfollow, like, unlike, bookmark, collaborator, comment, uncomment
//   - result: "ok" or the short failure reason (e.g. "already_following", "not_found", "error")
var SocialActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "social_actions_total",
		Help:      "Total number of social graph mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// GraphRepairsTotal counts follow-edge repairs.
// Labels:
//   - source: "queue" (compensating job) or "scan" (reconciler)
//   - result: "added", "removed", "noop" or "error"
var GraphRepairsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_repairs_total",
		Help:      "Total number of follow graph repairs, by source and result.",
	},
	[]string{"source", "result"},
)

// RepairQueueDepth tracks the number of repair jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RepairQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "repair_queue_depth",
		Help:      "Current number of repair jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Views & feed ─────────────────────────────────────────────────────────────

// ViewDedupTotal counts view deduplication decisions.
// Label:
//   - result: "hit" (within cooldown, not counted), "miss" (counted) or "error" (store failed, counted)
var ViewDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_dedup_total",
		Help:      "Total number of view deduplication checks, labelled by result.",
	},
	[]string{"result"},
)

// FeedBuildDuration measures how long deriving a user's activity feed takes.
var FeedBuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_build_duration_seconds",
		Help:      "Duration of activity feed derivation.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ProjectsCreatedTotal counts newly published projects.
var ProjectsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_created_total",
		Help:      "Total number of projects created.",
	},
)
