package coursesrc

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

type GitHubFetcher struct {
	gh  *github.Client
	ref RepoRef
	dir string
}

func NewGitHubFetcher(ctx context.Context, token string, ref RepoRef, dir string) *GitHubFetcher {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &GitHubFetcher{gh: github.NewClient(httpClient), ref: ref, dir: dir}
}

func (f *GitHubFetcher) Documents(ctx context.Context) ([]Document, error) {
	_, listing, _, err := f.gh.Repositories.GetContents(ctx, f.ref.Owner, f.ref.Repo, f.dir, nil)
	if err != nil {
		return nil, fmt.Errorf("github list %s: %w", f.dir, err)
	}

	var docs []Document
	for _, entry := range listing {
		if entry.GetType() != "file" || !isCourseFile(entry.GetName()) {
			continue
		}
		file, _, _, err := f.gh.Repositories.GetContents(ctx, f.ref.Owner, f.ref.Repo, path.Join(f.dir, entry.GetName()), nil)
		if err != nil {
			return nil, fmt.Errorf("github fetch %s: %w", entry.GetName(), err)
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("github decode %s: %w", entry.GetName(), err)
		}
		docs = append(docs, Document{Name: entry.GetName(), Content: content})
	}
	return docs, nil
}
