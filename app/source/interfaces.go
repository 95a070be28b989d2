package source

import (
	"context"

	"github.com/lysyi3m/blog-comb/app/post"
)

// Source is one upstream representation of a blog. Implementations return
// *post.Error values so the adapter can classify failures.
type Source interface {
	Kind() string
	FetchAll(ctx context.Context) ([]post.Post, error)
	FetchBySlug(ctx context.Context, slug string) (post.Post, error)
}
