package coursesrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL_GitHub(t *testing.T) {
	ref, err := ParseRepoURL("https://github.com/acme/course-docs")
	require.NoError(t, err)

	assert.Equal(t, PlatformGitHub, ref.Platform)
	assert.Equal(t, "github.com", ref.Host)
	assert.Equal(t, "acme", ref.Owner)
	assert.Equal(t, "course-docs", ref.Repo)
}

func TestParseRepoURL_GitLab(t *testing.T) {
	ref, err := ParseRepoURL("https://gitlab.com/acme/course-docs.git")
	require.NoError(t, err)

	assert.Equal(t, PlatformGitLab, ref.Platform)
	assert.Equal(t, "acme", ref.Owner)
	assert.Equal(t, "course-docs", ref.Repo)
}

func TestParseRepoURL_GitLabNestedGroups(t *testing.T) {
	ref, err := ParseRepoURL("https://gitlab.example.com/education/backend/course-docs")
	require.NoError(t, err)

	assert.Equal(t, PlatformGitLab, ref.Platform)
	assert.Equal(t, "education/backend", ref.Owner)
	assert.Equal(t, "course-docs", ref.Repo)
}

func TestParseRepoURL_UnknownHost(t *testing.T) {
	_, err := ParseRepoURL("https://bitbucket.org/acme/course-docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot determine platform")
}

func TestParseRepoURL_MissingRepo(t *testing.T) {
	_, err := ParseRepoURL("https://github.com/acme")
	require.Error(t, err)
}

func TestFactory_FetcherForPicksPlatform(t *testing.T) {
	f := NewFactory("gh-token", "gl-token")

	gh, err := f.FetcherFor(context.Background(), "https://github.com/acme/docs", "courses")
	require.NoError(t, err)
	assert.IsType(t, &GitHubFetcher{}, gh)

	gl, err := f.FetcherFor(context.Background(), "https://gitlab.com/acme/docs", "")
	require.NoError(t, err)
	assert.IsType(t, &GitLabFetcher{}, gl)
}

func TestFolder_ReadsCourseFilesSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-course.txt"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-course.md"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	docs, err := NewFolder(dir).Documents(context.Background())
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a-course.md", docs[0].Name)
	assert.Equal(t, "first", docs[0].Content)
	assert.Equal(t, "b-course.txt", docs[1].Name)
}

func TestFolder_MissingDirectory(t *testing.T) {
	_, err := NewFolder(filepath.Join(t.TempDir(), "missing")).Documents(context.Background())
	require.Error(t, err)
}
