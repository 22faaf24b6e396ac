// Package platforms contains the social network adapters. Each adapter
// wraps one publishing API behind the Platform interface so the tools layer
// never touches network specifics.
package platforms

import (
	"context"
	"time"
)

// PublishResult reports the outcome of a publish call.
type PublishResult struct {
	PostID string
	URL    string
	// DryRun is true when nothing was sent externally.
	DryRun bool
}

// Post is a previously published post.
type Post struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// Platform is the adapter contract. Publish truncates over-length content
// rather than rejecting it.
type Platform interface {
	Name() string
	MaxLength() int
	Publish(ctx context.Context, content string) (*PublishResult, error)
	RecentPosts(ctx context.Context, limit int) ([]Post, error)
	HealthCheck(ctx context.Context) error
}

// Truncate cuts content to max characters, marking the cut with an ellipsis.
func Truncate(content string, max int) string {
	if len(content) <= max {
		return content
	}
	return content[:max-3] + "..."
}
