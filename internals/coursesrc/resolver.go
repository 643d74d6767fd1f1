package coursesrc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type Platform int

const (
	PlatformGitHub Platform = iota
	PlatformGitLab
)

func (p Platform) String() string {
	switch p {
	case PlatformGitHub:
		return "github"
	case PlatformGitLab:
		return "gitlab"
	default:
		return "unknown"
	}
}

// RepoRef identifies a hosted repository holding course documents.
type RepoRef struct {
	Platform Platform
	Host     string
	Owner    string
	Repo     string
	RawURL   string
}

// ParseRepoURL accepts https URLs for github.com and gitlab hosts,
// including self-hosted GitLab instances.
func ParseRepoURL(rawURL string) (RepoRef, error) {
	rawURL = strings.TrimSpace(rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return RepoRef{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	host := strings.ToLower(u.Hostname())
	platform, err := detectPlatform(host)
	if err != nil {
		return RepoRef{}, err
	}

	path := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		return RepoRef{}, fmt.Errorf("repo URL must have owner and repo: %q", rawURL)
	}

	// GitLab allows nested groups, so everything before the last segment
	// is the namespace.
	return RepoRef{
		Platform: platform,
		Host:     host,
		Owner:    strings.Join(parts[:len(parts)-1], "/"),
		Repo:     parts[len(parts)-1],
		RawURL:   rawURL,
	}, nil
}

func detectPlatform(host string) (Platform, error) {
	switch {
	case host == "github.com" || strings.HasSuffix(host, ".github.com"):
		return PlatformGitHub, nil
	case host == "gitlab.com" || strings.Contains(host, "gitlab"):
		return PlatformGitLab, nil
	default:
		return 0, fmt.Errorf("cannot determine platform from host %q", host)
	}
}

// Factory builds repo fetchers from a URL, choosing the right client by
// platform.
type Factory struct {
	githubToken   string
	gitlabToken   string
	gitlabBaseURL string
}

type FactoryOption func(*Factory)

func WithGitLabBaseURL(baseURL string) FactoryOption {
	return func(f *Factory) { f.gitlabBaseURL = baseURL }
}

func NewFactory(githubToken, gitlabToken string, opts ...FactoryOption) *Factory {
	f := &Factory{
		githubToken:   githubToken,
		gitlabToken:   gitlabToken,
		gitlabBaseURL: "https://gitlab.com",
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FetcherFor returns a fetcher for the documents under dir in the given
// repository. dir may be empty for the repository root.
func (f *Factory) FetcherFor(ctx context.Context, repoURL, dir string) (Fetcher, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	switch ref.Platform {
	case PlatformGitHub:
		return NewGitHubFetcher(ctx, f.githubToken, ref, dir), nil

	case PlatformGitLab:
		baseURL := f.gitlabBaseURL
		if ref.Host != "gitlab.com" {
			parsed, _ := url.Parse(ref.RawURL)
			baseURL = parsed.Scheme + "://" + parsed.Host
		}
		return NewGitLabFetcher(f.gitlabToken, baseURL, ref, dir)
	}

	return nil, fmt.Errorf("unsupported platform: %s", ref.Platform)
}
