package models

import (
	"context"
	"time"
)

// ReviewMessage is the single message the developer publishes to the
// reviewer over a ReviewHandoff (spec.md §4.6 step 5).
type ReviewMessage struct {
	Files    GeneratedFileSet
	Issue    Issue
	ThreadID string
}

// ReviewHandoff is the optional single-producer/single-consumer channel
// between the developer and the reviewer (spec.md §5): capacity 1, since
// the developer finishes generating before publishing, so no unbounded
// queue can form. Grounded on the teacher's SubAgentRunner.WaitForNext
// (pkg/agent/orchestrator/runner.go): a select against a results channel
// and the caller's context, bounded here additionally by a fixed timeout.
type ReviewHandoff struct {
	ch chan ReviewMessage
}

// NewReviewHandoff returns a ready, unpublished handoff.
func NewReviewHandoff() *ReviewHandoff {
	return &ReviewHandoff{ch: make(chan ReviewMessage, 1)}
}

// Publish delivers msg to the handoff. Non-blocking: the channel has
// capacity 1 and is published to at most once per generation, so the send
// never contends with a slow or absent consumer.
func (h *ReviewHandoff) Publish(msg ReviewMessage) {
	if h == nil {
		return
	}
	select {
	case h.ch <- msg:
	default:
	}
}

// Receive blocks up to timeout for a published message, returning ok=false
// on timeout or context cancellation so the caller can fall back to the
// files already carried in pipeline state (spec.md suspension point 4: the
// reviewer-queue receive, up to 300s).
func (h *ReviewHandoff) Receive(ctx context.Context, timeout time.Duration) (ReviewMessage, bool) {
	if h == nil {
		return ReviewMessage{}, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-h.ch:
		return msg, true
	case <-timer.C:
		return ReviewMessage{}, false
	case <-ctx.Done():
		return ReviewMessage{}, false
	}
}

// ReviewHandoffTimeout is the default bounded-receive window (spec.md §5
// suspension point 4).
const ReviewHandoffTimeout = 300 * time.Second
