package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

func (r *Resources) projectsTool() ToolConfig {
	return ToolConfig{
		Name:        "projects",
		Description: "Browse the projects of the Azure DevOps organization.",
		Examples: []map[string]interface{}{
			{"operation": "list", "listParams": map[string]interface{}{"maxResults": 10}},
			{"operation": "get", "getParams": map[string]interface{}{"projectId": "Fabrikam", "includeCapabilities": true}},
		},
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List projects of the organization",
				Fields:      paginationFields(),
				Handler:     r.listProjects,
			},
			{
				Name:        "get",
				Description: "Get a project by name or ID",
				Fields: []FieldSpec{
					{Name: "projectId", Type: TypeString, Required: true, Description: "Project name or ID"},
					{Name: "includeCapabilities", Type: TypeBoolean, Default: false, Description: "Include version control and process capabilities"},
				},
				Handler: r.getProject,
			},
		},
	}
}

func (r *Resources) listProjects(ctx context.Context, params Params) (interface{}, error) {
	pager := domain.OffsetPaginator[domain.TeamProject]{Fetch: r.Projects.ListProjects}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Resources) getProject(ctx context.Context, params Params) (interface{}, error) {
	return r.Projects.GetProject(ctx, params.String("projectId"), params.Bool("includeCapabilities"))
}
