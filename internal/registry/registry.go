// Package registry is the release source client. It resolves selectors
// against the GitHub Releases API of the Tidal distribution repository and
// turns release metadata into package sets filtered by target triple. It
// holds no local state.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/ZebulonRouseFrantzich/tvm/internal/selector"
)

const (
	// DefaultBaseURL is the GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// RepoOwner and RepoName locate the distribution's release repository.
	RepoOwner = "ZebulonRouseFrantzich"
	RepoName  = "tidal"
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "tvm"

	// latestChannelTag is the moving tag the "latest" channel resolves to.
	latestChannelTag = "dev"

	// maxResponseBytes bounds API response bodies (10 MB).
	maxResponseBytes = 10 << 20
)

// InstallableBinaries are the managed executables materialized by install.
// The full package set additionally carries the tvm binary for self-update.
var InstallableBinaries = []string{"tidal", "tidal-run", "tdk"}

// NotFoundError reports a tag with no release behind it. The tag is carried
// verbatim for user-facing diagnostics.
type NotFoundError struct {
	Tag string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no release found for tag %q", e.Tag)
}

// ArchError reports a release that exists but publishes no artifacts for the
// requested target triple.
type ArchError struct {
	Tag    string
	Triple string
}

func (e *ArchError) Error() string {
	return fmt.Sprintf("release %q has no artifacts for target %q", e.Tag, e.Triple)
}

// Artifact is one downloadable binary of a resolved release.
type Artifact struct {
	Name        string
	Version     string
	DownloadURL string
	// Digest is the published "sha256:<hex>" checksum, empty when the
	// registry did not record one.
	Digest string
	// SignatureURL points at a detached .asc signature, empty when the
	// release ships none.
	SignatureURL string
}

// PackageSet is the resolved artifact set for one release and triple.
// Produced on demand, never persisted.
type PackageSet struct {
	// Tag is the remote release tag the set was resolved from.
	Tag string
	// Version is the resolved semantic version, without a "v" prefix.
	Version string
	// Triple is the target the artifacts were filtered for.
	Triple string
	// Artifacts is keyed by binary name.
	Artifacts []Artifact
}

// Artifact returns the named artifact from the set.
func (ps *PackageSet) Artifact(name string) (*Artifact, bool) {
	for i := range ps.Artifacts {
		if ps.Artifacts[i].Name == name {
			return &ps.Artifacts[i], true
		}
	}
	return nil, false
}

// release and asset are the GitHub API wire forms, reduced to the fields the
// resolver consumes.
type release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Digest             string `json:"digest"`
}

// Client queries the release registry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for test servers.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken attaches a bearer token for higher API rate limits.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRepo overrides the release repository.
func WithRepo(owner, repo string) Option {
	return func(c *Client) {
		c.owner = owner
		c.repo = repo
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a registry client with production defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		owner:      RepoOwner,
		repo:       RepoName,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolvePackageSet maps a selector to the full package set for a triple,
// including the tvm artifact. Channel semantics: "stable" follows the
// registry's latest release, "latest" follows the moving dev tag, any other
// channel name is resolved as a literal tag. Static selectors resolve their
// own tag.
func (c *Client) ResolvePackageSet(ctx context.Context, sel selector.Selector, triple string) (*PackageSet, error) {
	rel, version, err := c.resolveRelease(ctx, sel)
	if err != nil {
		return nil, err
	}

	ps := &PackageSet{
		Tag:     rel.TagName,
		Version: version,
		Triple:  triple,
	}

	// Signature assets are indexed first so each binary asset can pick up
	// its companion .asc in one pass.
	sigURLs := make(map[string]string)
	for _, a := range rel.Assets {
		if strings.HasSuffix(a.Name, ".asc") {
			sigURLs[strings.TrimSuffix(a.Name, ".asc")] = a.BrowserDownloadURL
		}
	}

	suffix := "-" + triple
	for _, a := range rel.Assets {
		if !strings.HasSuffix(a.Name, suffix) {
			continue
		}
		ps.Artifacts = append(ps.Artifacts, Artifact{
			Name:         strings.TrimSuffix(a.Name, suffix),
			Version:      version,
			DownloadURL:  a.BrowserDownloadURL,
			Digest:       a.Digest,
			SignatureURL: sigURLs[a.Name],
		})
	}

	if len(ps.Artifacts) == 0 {
		return nil, &ArchError{Tag: rel.TagName, Triple: triple}
	}

	return ps, nil
}

// ResolveInstallSet resolves the package set and narrows it to the
// installable binaries.
func (c *Client) ResolveInstallSet(ctx context.Context, sel selector.Selector, triple string) (*PackageSet, error) {
	ps, err := c.ResolvePackageSet(ctx, sel, triple)
	if err != nil {
		return nil, err
	}

	var installable []Artifact
	for _, a := range ps.Artifacts {
		for _, name := range InstallableBinaries {
			if a.Name == name || a.Name == name+".exe" {
				installable = append(installable, a)
				break
			}
		}
	}

	if len(installable) == 0 {
		return nil, &ArchError{Tag: ps.Tag, Triple: triple}
	}

	ps.Artifacts = installable
	return ps, nil
}

// StableVersion returns the version of the registry's latest stable release.
func (c *Client) StableVersion(ctx context.Context) (string, error) {
	rel, err := c.latestRelease(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(rel.TagName, "v"), nil
}

// resolveRelease fetches the release a selector points at and derives its
// semantic version.
func (c *Client) resolveRelease(ctx context.Context, sel selector.Selector) (*release, string, error) {
	switch {
	case sel.IsStatic():
		tag := "v" + sel.Version()
		rel, err := c.releaseByTag(ctx, tag)
		if err != nil {
			return nil, "", err
		}
		return rel, sel.Version(), nil

	case sel.IsChannel() && sel.String() == selector.Stable:
		rel, err := c.latestRelease(ctx)
		if err != nil {
			return nil, "", err
		}
		return rel, strings.TrimPrefix(rel.TagName, "v"), nil

	case sel.IsChannel() && sel.String() == selector.Latest:
		rel, err := c.releaseByTag(ctx, latestChannelTag)
		if err != nil {
			return nil, "", err
		}
		version, err := movingReleaseVersion(rel)
		if err != nil {
			return nil, "", err
		}
		return rel, version, nil

	case sel.IsChannel():
		rel, err := c.releaseByTag(ctx, sel.String())
		if err != nil {
			return nil, "", err
		}
		version, err := movingReleaseVersion(rel)
		if err != nil {
			return nil, "", err
		}
		return rel, version, nil

	default:
		return nil, "", fmt.Errorf("cannot resolve an unset selector")
	}
}

// movingReleaseVersion derives a semantic version for releases whose tag is
// not itself a version (the dev tag and custom channels). The registry
// publishes the version in the release name.
func movingReleaseVersion(rel *release) (string, error) {
	for _, candidate := range []string{rel.TagName, rel.Name} {
		bare := strings.TrimPrefix(strings.TrimSpace(candidate), "v")
		if bare != "" && semver.IsValid("v"+bare) {
			return bare, nil
		}
	}
	return "", fmt.Errorf("release %q does not declare a semantic version", rel.TagName)
}

// latestRelease fetches the registry's latest non-draft, non-prerelease
// release.
func (c *Client) latestRelease(ctx context.Context) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	rel, err := c.fetchRelease(ctx, url, selector.Stable)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// releaseByTag fetches one release by its literal tag. A 404 becomes a
// NotFoundError carrying the tag.
func (c *Client) releaseByTag(ctx context.Context, tag string) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, tag)
	return c.fetchRelease(ctx, url, tag)
}

// fetchRelease performs the request and decodes a single release. notFoundTag
// names the tag reported when the registry answers 404.
func (c *Client) fetchRelease(ctx context.Context, url, notFoundTag string) (*release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Tag: notFoundTag}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch release: unexpected status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	return &rel, nil
}

// IsNotFound reports whether err is a release-not-found error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
