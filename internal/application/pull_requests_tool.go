package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

var pullRequestStatuses = []string{"active", "abandoned", "completed", "all"}

func (r *Resources) pullRequestsTool() ToolConfig {
	repositoryField := FieldSpec{Name: "repositoryId", Type: TypeString, Required: true, Description: "Repository name or ID"}

	return ToolConfig{
		Name:        "pullRequests",
		Description: "Browse the pull requests of a repository.",
		Examples: []map[string]interface{}{
			{"operation": "list", "listParams": map[string]interface{}{"projectId": "Fabrikam", "repositoryId": "api", "status": "active"}},
			{"operation": "get", "getParams": map[string]interface{}{"projectId": "Fabrikam", "repositoryId": "api", "pullRequestId": 42}},
		},
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List pull requests of a repository",
				Fields: append([]FieldSpec{
					projectField("Project name or ID"),
					repositoryField,
					{Name: "status", Type: TypeString, Enum: pullRequestStatuses, Description: "Filter by status (service default: active)"},
				}, paginationFields()...),
				Handler: r.listPullRequests,
			},
			{
				Name:        "get",
				Description: "Get a pull request",
				Fields: []FieldSpec{
					projectField("Project name or ID"),
					repositoryField,
					{Name: "pullRequestId", Type: TypeInteger, Required: true, Description: "Pull request ID"},
				},
				Handler: r.getPullRequest,
			},
		},
	}
}

func (r *Resources) listPullRequests(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	repository := params.String("repositoryId")
	status := params.String("status")
	pager := domain.OffsetPaginator[domain.GitPullRequest]{
		Fetch: func(ctx context.Context) ([]domain.GitPullRequest, error) {
			return r.Git.ListPullRequests(ctx, project, repository, status)
		},
	}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Resources) getPullRequest(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	return r.Git.GetPullRequest(ctx, project, params.String("repositoryId"), params.Int("pullRequestId"))
}
