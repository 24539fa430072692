package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"azure-devops-mcp-server/internal/domain"
)

// maxListPages bounds how many upstream pages a full-collection fetch follows.
const maxListPages = 50

// ProjectClient reads team projects of the organization.
type ProjectClient struct {
	api domain.APIClient
}

// NewProjectClient creates a project client on top of the transport client.
func NewProjectClient(api domain.APIClient) *ProjectClient {
	return &ProjectClient{api: api}
}

// ListProjects returns every project of the organization, following the
// upstream continuation header until the collection is exhausted.
func (c *ProjectClient) ListProjects(ctx context.Context) ([]domain.TeamProject, error) {
	return listAll[domain.TeamProject](ctx, c.api, domain.Endpoint{Method: http.MethodGet, Path: "projects"}, nil)
}

// GetProject retrieves a project by name or ID.
func (c *ProjectClient) GetProject(ctx context.Context, projectID string, includeCapabilities bool) (*domain.TeamProject, error) {
	query := url.Values{}
	if includeCapabilities {
		query.Set("includeCapabilities", strconv.FormatBool(true))
	}

	result, err := c.api.Call(ctx, domain.Endpoint{
		Method: http.MethodGet,
		Path:   "projects/" + url.PathEscape(projectID),
	}, domain.RequestParams{Query: query})
	if err != nil {
		return nil, domain.WithContext(err, "project %s", projectID)
	}

	var project domain.TeamProject
	if err := result.Decode(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// listAll fetches a list endpoint page by page using the
// continuationToken query parameter.
func listAll[T any](ctx context.Context, api domain.APIClient, endpoint domain.Endpoint, query url.Values) ([]T, error) {
	all := []T{}
	token := ""
	for page := 0; page < maxListPages; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		if token != "" {
			q.Set("continuationToken", token)
		}

		result, err := api.Call(ctx, endpoint, domain.RequestParams{Query: q})
		if err != nil {
			return nil, err
		}
		items, err := domain.DecodeItems[T](result)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if result.ContinuationToken == "" || result.ContinuationToken == token {
			break
		}
		token = result.ContinuationToken
	}
	return all, nil
}
