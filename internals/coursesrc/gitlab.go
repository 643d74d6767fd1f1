package coursesrc

import (
	"context"
	"encoding/base64"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

type GitLabFetcher struct {
	gl  *gitlab.Client
	ref RepoRef
	dir string
}

func NewGitLabFetcher(token, baseURL string, ref RepoRef, dir string) (*GitLabFetcher, error) {
	gl, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("gitlab client: %w", err)
	}
	return &GitLabFetcher{gl: gl, ref: ref, dir: dir}, nil
}

func (f *GitLabFetcher) pid() string {
	return f.ref.Owner + "/" + f.ref.Repo
}

func (f *GitLabFetcher) Documents(ctx context.Context) ([]Document, error) {
	opts := &gitlab.ListTreeOptions{}
	if f.dir != "" {
		opts.Path = gitlab.Ptr(f.dir)
	}
	tree, _, err := f.gl.Repositories.ListTree(f.pid(), opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("gitlab list %s: %w", f.dir, err)
	}

	var docs []Document
	for _, node := range tree {
		if node.Type != "blob" || !isCourseFile(node.Name) {
			continue
		}
		file, _, err := f.gl.RepositoryFiles.GetFile(f.pid(), node.Path,
			&gitlab.GetFileOptions{Ref: gitlab.Ptr("HEAD")}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("gitlab fetch %s: %w", node.Path, err)
		}
		content, err := base64.StdEncoding.DecodeString(file.Content)
		if err != nil {
			return nil, fmt.Errorf("gitlab decode %s: %w", node.Path, err)
		}
		docs = append(docs, Document{Name: node.Name, Content: string(content)})
	}
	return docs, nil
}
