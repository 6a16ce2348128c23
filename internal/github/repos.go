package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// CreateRepository creates a repository owned by the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, opts CreateRepoOptions) (*Repository, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, errors.New("repository name is required")
	}
	return Do(ctx, c.retrier(), "create repository", func(ctx context.Context) (*Repository, error) {
		var repo Repository
		if err := c.request(ctx, http.MethodPost, "/user/repos", nil, opts, &repo); err != nil {
			return nil, err
		}
		return &repo, nil
	})
}

// GetRepository fetches a repository by "owner/repo".
func (c *Client) GetRepository(ctx context.Context, fullName string) (*Repository, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return Do(ctx, c.retrier(), "get repository", func(ctx context.Context) (*Repository, error) {
		var repo Repository
		if err := c.request(ctx, http.MethodGet, path, nil, nil, &repo); err != nil {
			return nil, err
		}
		return &repo, nil
	})
}

// ListRepositories lists repositories for login, or for the authenticated
// user when login is empty, most recently updated first.
func (c *Client) ListRepositories(ctx context.Context, login string, limit int) ([]Repository, error) {
	q := url.Values{"sort": {"updated"}}
	path := "/user/repos"
	if login = strings.TrimSpace(login); login != "" {
		path = "/users/" + url.PathEscape(login) + "/repos"
	}
	return listPages[Repository](ctx, c, "list repositories", path, q, limit)
}

// DeleteRepository deletes a repository. The token needs the delete_repo scope.
func (c *Client) DeleteRepository(ctx context.Context, fullName string) error {
	path, err := repoPath(fullName)
	if err != nil {
		return err
	}
	_, err = Do(ctx, c.retrier(), "delete repository", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.request(ctx, http.MethodDelete, path, nil, nil, nil)
	})
	return err
}

// ForkRepository forks a repository into the authenticated user's account.
func (c *Client) ForkRepository(ctx context.Context, fullName string) (*Repository, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return Do(ctx, c.retrier(), "fork repository", func(ctx context.Context) (*Repository, error) {
		var repo Repository
		if err := c.request(ctx, http.MethodPost, path+"/forks", nil, map[string]any{}, &repo); err != nil {
			return nil, err
		}
		return &repo, nil
	})
}

// ListBranches lists branches of a repository.
func (c *Client) ListBranches(ctx context.Context, fullName string) ([]Branch, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return listPages[Branch](ctx, c, "list branches", path+"/branches", nil, 0)
}

type gitRef struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

// CreateBranch creates name pointing at the head of source.
func (c *Client) CreateBranch(ctx context.Context, fullName, name, source string) (*Branch, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("branch name is required")
	}
	if source = strings.TrimSpace(source); source == "" {
		source = "main"
	}

	src, err := Do(ctx, c.retrier(), "get branch ref", func(ctx context.Context) (*gitRef, error) {
		var ref gitRef
		if err := c.request(ctx, http.MethodGet, path+"/git/ref/heads/"+escapeRef(source), nil, nil, &ref); err != nil {
			return nil, err
		}
		return &ref, nil
	})
	if err != nil {
		return nil, err
	}

	created, err := Do(ctx, c.retrier(), "create branch", func(ctx context.Context) (*gitRef, error) {
		var ref gitRef
		body := map[string]string{"ref": "refs/heads/" + name, "sha": src.Object.SHA}
		if err := c.request(ctx, http.MethodPost, path+"/git/refs", nil, body, &ref); err != nil {
			return nil, err
		}
		return &ref, nil
	})
	if err != nil {
		return nil, err
	}

	b := &Branch{Name: name}
	b.Commit.SHA = created.Object.SHA
	return b, nil
}

// DeleteBranch removes a branch ref.
func (c *Client) DeleteBranch(ctx context.Context, fullName, name string) error {
	path, err := repoPath(fullName)
	if err != nil {
		return err
	}
	_, err = Do(ctx, c.retrier(), "delete branch", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.request(ctx, http.MethodDelete, path+"/git/refs/heads/"+escapeRef(name), nil, nil, nil)
	})
	return err
}

// CreateRelease publishes a release for tag.
func (c *Client) CreateRelease(ctx context.Context, fullName string, rel NewRelease) (*Release, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rel.TagName) == "" {
		return nil, errors.New("release tag is required")
	}
	if rel.Name == "" {
		rel.Name = rel.TagName
	}
	return Do(ctx, c.retrier(), "create release", func(ctx context.Context) (*Release, error) {
		var out Release
		if err := c.request(ctx, http.MethodPost, path+"/releases", nil, rel, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// ListReleases lists releases newest first.
func (c *Client) ListReleases(ctx context.Context, fullName string, limit int) ([]Release, error) {
	path, err := repoPath(fullName)
	if err != nil {
		return nil, err
	}
	return listPages[Release](ctx, c, "list releases", path+"/releases", nil, limit)
}

// escapeRef escapes each segment of a ref so names like feature/x survive.
func escapeRef(ref string) string {
	parts := strings.Split(strings.TrimSpace(ref), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
