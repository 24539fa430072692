package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

func (r *Resources) repositoriesTool() ToolConfig {
	repositoryField := FieldSpec{Name: "repositoryId", Type: TypeString, Required: true, Description: "Repository name or ID"}

	return ToolConfig{
		Name:        "repositories",
		Description: "Browse the Git repositories of a project and their branches.",
		Examples: []map[string]interface{}{
			{"operation": "list", "listParams": map[string]interface{}{"projectId": "Fabrikam"}},
			{"operation": "listBranches", "listBranchesParams": map[string]interface{}{"projectId": "Fabrikam", "repositoryId": "api"}},
		},
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List repositories of a project",
				Fields:      append([]FieldSpec{projectField("Project name or ID")}, paginationFields()...),
				Handler:     r.listRepositories,
			},
			{
				Name:        "get",
				Description: "Get a repository",
				Fields:      []FieldSpec{projectField("Project name or ID"), repositoryField},
				Handler:     r.getRepository,
			},
			{
				Name:        "listBranches",
				Description: "List branches of a repository",
				Fields:      append([]FieldSpec{projectField("Project name or ID"), repositoryField}, paginationFields()...),
				Handler:     r.listBranches,
			},
		},
	}
}

func (r *Resources) listRepositories(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	pager := domain.OffsetPaginator[domain.GitRepository]{
		Fetch: func(ctx context.Context) ([]domain.GitRepository, error) {
			return r.Git.ListRepositories(ctx, project)
		},
	}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Resources) getRepository(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	return r.Git.GetRepository(ctx, project, params.String("repositoryId"))
}

func (r *Resources) listBranches(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	repository := params.String("repositoryId")
	pager := domain.OffsetPaginator[domain.Branch]{
		Fetch: func(ctx context.Context) ([]domain.Branch, error) {
			return r.Git.ListBranches(ctx, project, repository)
		},
	}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}
