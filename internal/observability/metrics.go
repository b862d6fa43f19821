package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VoteToggles counts applied upvote toggles by the delta they applied.
	VoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_vote_toggles_total",
		Help: "Upvote toggles applied, by delta",
	}, []string{"delta"})

	// StoreErrors counts failed backend store calls.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_store_errors_total",
		Help: "Failed backend store calls, by table and operation",
	}, []string{"table", "operation"})

	// SuppressedMutations counts edits/deletes skipped by the ownership gate.
	SuppressedMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_suppressed_mutations_total",
		Help: "Mutations not issued because the acting user does not own the resource",
	}, []string{"operation"})
)

// RecordVote counts one applied toggle.
func RecordVote(delta int) {
	VoteToggles.WithLabelValues(strconv.Itoa(delta)).Inc()
}

// RecordSuppressed counts one gated mutation that was not issued.
func RecordSuppressed(operation string) {
	SuppressedMutations.WithLabelValues(operation).Inc()
}
