package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

func (r *Resources) pipelinesTool() ToolConfig {
	pipelineField := FieldSpec{Name: "pipelineId", Type: TypeInteger, Required: true, Min: bound(1), Description: "Pipeline ID"}

	return ToolConfig{
		Name:        "pipelines",
		Description: "Browse the pipelines of a project and their runs.",
		Examples: []map[string]interface{}{
			{"operation": "list", "listParams": map[string]interface{}{"projectId": "Fabrikam", "maxResults": 20}},
			{"operation": "listRuns", "listRunsParams": map[string]interface{}{"projectId": "Fabrikam", "pipelineId": 7}},
		},
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List pipelines of a project",
				Fields:      append([]FieldSpec{projectField("Project name or ID")}, paginationFields()...),
				Handler:     r.listPipelines,
			},
			{
				Name:        "get",
				Description: "Get a pipeline",
				Fields:      []FieldSpec{projectField("Project name or ID"), pipelineField},
				Handler:     r.getPipeline,
			},
			{
				Name:        "listRuns",
				Description: "List recent runs of a pipeline",
				Fields:      append([]FieldSpec{projectField("Project name or ID"), pipelineField}, paginationFields()...),
				Handler:     r.listPipelineRuns,
			},
		},
	}
}

func (r *Resources) listPipelines(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	pager := domain.CursorPaginator[domain.Pipeline]{
		Fetch: func(ctx context.Context, top int, cursor string) ([]domain.Pipeline, string, error) {
			return r.Pipelines.ListPipelines(ctx, project, top, cursor)
		},
	}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Resources) getPipeline(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	return r.Pipelines.GetPipeline(ctx, project, params.Int("pipelineId"))
}

func (r *Resources) listPipelineRuns(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	pipelineID := params.Int("pipelineId")
	pager := domain.OffsetPaginator[domain.PipelineRun]{
		Fetch: func(ctx context.Context) ([]domain.PipelineRun, error) {
			return r.Pipelines.ListPipelineRuns(ctx, project, pipelineID)
		},
	}
	page, err := pager.Paginate(ctx, pageState(params))
	if err != nil {
		return nil, err
	}
	return page, nil
}
