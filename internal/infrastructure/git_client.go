package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"azure-devops-mcp-server/internal/domain"
)

const (
	branchRefPrefix = "refs/heads/"

	// pullRequestPageSize is the $top used while walking pull requests.
	pullRequestPageSize = 100
)

// GitClient reads repositories, branches and pull requests of a project.
type GitClient struct {
	api domain.APIClient
}

// NewGitClient creates a Git client on top of the transport client.
func NewGitClient(api domain.APIClient) *GitClient {
	return &GitClient{api: api}
}

// ListRepositories returns the repositories of a project.
func (c *GitClient) ListRepositories(ctx context.Context, project string) ([]domain.GitRepository, error) {
	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    "git/repositories",
	}, domain.RequestParams{})
	if err != nil {
		return nil, domain.WithContext(err, "repositories of project %s", project)
	}
	return domain.DecodeItems[domain.GitRepository](result)
}

// GetRepository retrieves a repository by name or ID.
func (c *GitClient) GetRepository(ctx context.Context, project, repository string) (*domain.GitRepository, error) {
	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    "git/repositories/" + url.PathEscape(repository),
	}, domain.RequestParams{})
	if err != nil {
		return nil, domain.WithContext(err, "repository %s", repository)
	}

	var repo domain.GitRepository
	if err := result.Decode(&repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListBranches returns every branch of a repository with the refs/heads/
// prefix removed from their names.
func (c *GitClient) ListBranches(ctx context.Context, project, repository string) ([]domain.Branch, error) {
	query := url.Values{}
	query.Set("filter", "heads/")

	refs, err := listAll[domain.GitRef](ctx, c.api, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    fmt.Sprintf("git/repositories/%s/refs", url.PathEscape(repository)),
	}, query)
	if err != nil {
		return nil, domain.WithContext(err, "branches of repository %s", repository)
	}

	branches := make([]domain.Branch, 0, len(refs))
	for _, ref := range refs {
		branch := domain.Branch{
			Name:     strings.TrimPrefix(ref.Name, branchRefPrefix),
			ObjectID: ref.ObjectID,
		}
		if ref.Creator != nil {
			branch.Creator = ref.Creator.DisplayName
		}
		branches = append(branches, branch)
	}
	return branches, nil
}

// ListPullRequests returns every pull request of a repository in the given
// status ("active", "completed", "abandoned" or "all"). An empty status
// lets the service apply its default. The endpoint pages with $top/$skip.
func (c *GitClient) ListPullRequests(ctx context.Context, project, repository, status string) ([]domain.GitPullRequest, error) {
	endpoint := domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    fmt.Sprintf("git/repositories/%s/pullrequests", url.PathEscape(repository)),
	}

	all := []domain.GitPullRequest{}
	for page := 0; page < maxListPages; page++ {
		query := url.Values{}
		if status != "" {
			query.Set("searchCriteria.status", status)
		}
		query.Set("$top", strconv.Itoa(pullRequestPageSize))
		query.Set("$skip", strconv.Itoa(len(all)))

		result, err := c.api.Call(ctx, endpoint, domain.RequestParams{Query: query})
		if err != nil {
			return nil, domain.WithContext(err, "pull requests of repository %s", repository)
		}
		prs, err := domain.DecodeItems[domain.GitPullRequest](result)
		if err != nil {
			return nil, err
		}
		all = append(all, prs...)
		if len(prs) < pullRequestPageSize {
			break
		}
	}
	return all, nil
}

// GetPullRequest retrieves one pull request of a repository.
func (c *GitClient) GetPullRequest(ctx context.Context, project, repository string, pullRequestID int) (*domain.GitPullRequest, error) {
	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    fmt.Sprintf("git/repositories/%s/pullrequests/%d", url.PathEscape(repository), pullRequestID),
	}, domain.RequestParams{})
	if err != nil {
		return nil, domain.WithContext(err, "pull request %d", pullRequestID)
	}

	var pr domain.GitPullRequest
	if err := result.Decode(&pr); err != nil {
		return nil, err
	}
	return &pr, nil
}
