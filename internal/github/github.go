package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/kevinmichaelchen/readme-drafter/internal/models"
	"k8s.io/klog/v2"
)

var (
	ErrInvalidRepositoryURL = errors.New("invalid repository URL")
	ErrRepositoryAccess     = errors.New("repository access failed")
)

// Resolve extracts owner and name from a repository URL by position
// (https:, "", host, owner, name). The URL is not otherwise validated.
func Resolve(repoURL string) (models.RepoRef, error) {
	parts := strings.Split(repoURL, "/")
	if len(parts) < 5 {
		return models.RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryURL, repoURL)
	}
	return models.RepoRef{Owner: parts[3], Name: parts[4]}, nil
}

// Client is a thin wrapper around the GitHub REST contents API.
type Client struct {
	gh      *gh.Client
	timeout time.Duration
}

// NewClient builds a client. An empty token uses unauthenticated access,
// which GitHub rate-limits heavily. baseURL overrides the API root.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	c := gh.NewClient(&http.Client{})
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		c.BaseURL = u
	}
	return &Client{gh: c, timeout: timeout}, nil
}

// Repository is a handle to one remote repository.
type Repository struct {
	client *Client

	Ref           models.RepoRef
	Description   string
	DefaultBranch string
}

func (c *Client) GetRepository(ctx context.Context, ref models.RepoRef) (*Repository, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	repo, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: getting %s: %w", ErrRepositoryAccess, ref.FullName(), err)
	}
	return &Repository{
		client:        c,
		Ref:           ref,
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// ListContents lists the entries at path. The empty path is the root.
func (r *Repository) ListContents(ctx context.Context, path string) ([]models.Entry, error) {
	ctx, cancel := r.client.withTimeout(ctx)
	defer cancel()

	file, dir, _, err := r.client.gh.Repositories.GetContents(ctx, r.Ref.Owner, r.Ref.Name, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %q in %s: %w", ErrRepositoryAccess, path, r.Ref.FullName(), err)
	}

	// A path that names a file comes back as a single content object.
	if file != nil {
		return []models.Entry{toEntry(file)}, nil
	}

	entries := make([]models.Entry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, toEntry(item))
	}
	klog.V(4).Infof("listed %d entries at %q in %s", len(entries), path, r.Ref.FullName())
	return entries, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func toEntry(rc *gh.RepositoryContent) models.Entry {
	return models.Entry{
		Name: rc.GetName(),
		Type: models.EntryType(rc.GetType()),
		Path: rc.GetPath(),
	}
}
