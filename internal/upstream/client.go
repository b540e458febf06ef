// Package upstream talks to the companion project's GitHub releases.
//
// The upgrade pipeline consumes spec-kit releases: each release ships a
// template archive containing the bash scripts, slash commands, and
// agent files that the transformation agents rewrite into speck's own
// formats. This package finds releases, downloads the template asset,
// and unpacks it — it never interprets the content.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// downloadTimeout is how long we wait for an asset download.
const downloadTimeout = 120 * time.Second

// Release holds the relevant fields of an upstream release.
type Release struct {
	Tag     string  `json:"tag"`
	Name    string  `json:"name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	Size        int    `json:"size"`
}

// Client fetches releases and assets for one upstream repository.
type Client struct {
	gh         *github.Client
	httpClient *http.Client
	owner      string
	repo       string
}

// ParseRepo splits an "owner/name" repository reference.
func ParseRepo(ref string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid upstream repo %q: want owner/name", ref)
	}
	return owner, name, nil
}

// NewClient creates a client for an "owner/name" repository. token may
// be empty: public release listing needs no auth, a token just raises
// the rate limit.
func NewClient(ctx context.Context, repoRef, token string) (*Client, error) {
	owner, name, err := ParseRepo(repoRef)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: downloadTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = downloadTimeout
	}

	return &Client{
		gh:         github.NewClient(httpClient),
		httpClient: httpClient,
		owner:      owner,
		repo:       name,
	}, nil
}

// LatestRelease returns the newest published release.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	rel, _, err := c.gh.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release of %s/%s: %w", c.owner, c.repo, err)
	}
	return convertRelease(rel), nil
}

// ReleaseByTag returns a specific release by its tag.
func (c *Client) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	rel, _, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		return nil, fmt.Errorf("fetching release %s of %s/%s: %w", tag, c.owner, c.repo, err)
	}
	return convertRelease(rel), nil
}

func convertRelease(rel *github.RepositoryRelease) *Release {
	r := &Release{
		Tag:     rel.GetTagName(),
		Name:    rel.GetName(),
		HTMLURL: rel.GetHTMLURL(),
	}
	for _, a := range rel.Assets {
		r.Assets = append(r.Assets, Asset{
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
			Size:        a.GetSize(),
		})
	}
	return r
}

// TemplateAsset picks the template archive from a release's assets.
// spec-kit ships one zip per assistant flavor; we want the claude one.
func (r *Release) TemplateAsset() (*Asset, error) {
	for i, a := range r.Assets {
		if strings.HasSuffix(a.Name, ".zip") && strings.Contains(a.Name, "claude") {
			return &r.Assets[i], nil
		}
	}
	// Fall back to any zip for repos with a single archive.
	for i, a := range r.Assets {
		if strings.HasSuffix(a.Name, ".zip") {
			return &r.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("release %s has no template zip asset", r.Tag)
}
