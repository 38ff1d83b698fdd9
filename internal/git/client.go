package git

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
)

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

// PlainCloneContext calls git.PlainCloneContext
func (c *RealClient) PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, path, isBare, o)
}

// NewCloneOptions returns options for a full working-tree checkout of url.
// History is kept so the project can be pulled and committed from KiCad.
func NewCloneOptions(url string, progress io.Writer) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:          url,
		Tags:         git.NoTags,
		SingleBranch: true,
	}
	if progress != nil {
		opts.Progress = progress
	}
	return opts
}
