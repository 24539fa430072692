package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"azure-devops-mcp-server/internal/domain"
)

// PipelineClient reads pipelines and their runs.
type PipelineClient struct {
	api domain.APIClient
}

// NewPipelineClient creates a pipeline client on top of the transport client.
func NewPipelineClient(api domain.APIClient) *PipelineClient {
	return &PipelineClient{api: api}
}

// ListPipelines returns one page of the pipelines of a project. The service
// pages this endpoint itself: the returned cursor feeds the next call and is
// empty on the last page.
func (c *PipelineClient) ListPipelines(ctx context.Context, project string, top int, cursor string) ([]domain.Pipeline, string, error) {
	query := url.Values{}
	if top > 0 {
		query.Set("$top", strconv.Itoa(top))
	}
	if cursor != "" {
		query.Set("continuationToken", cursor)
	}

	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    "pipelines",
	}, domain.RequestParams{Query: query})
	if err != nil {
		return nil, "", domain.WithContext(err, "pipelines of project %s", project)
	}

	pipelines, err := domain.DecodeItems[domain.Pipeline](result)
	if err != nil {
		return nil, "", err
	}
	return pipelines, result.ContinuationToken, nil
}

// GetPipeline retrieves a pipeline definition by ID.
func (c *PipelineClient) GetPipeline(ctx context.Context, project string, pipelineID int) (*domain.Pipeline, error) {
	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    fmt.Sprintf("pipelines/%d", pipelineID),
	}, domain.RequestParams{})
	if err != nil {
		return nil, domain.WithContext(err, "pipeline %d", pipelineID)
	}

	var pipeline domain.Pipeline
	if err := result.Decode(&pipeline); err != nil {
		return nil, err
	}
	return &pipeline, nil
}

// ListPipelineRuns returns the recent runs of a pipeline.
func (c *PipelineClient) ListPipelineRuns(ctx context.Context, project string, pipelineID int) ([]domain.PipelineRun, error) {
	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodGet,
		Project: project,
		Path:    fmt.Sprintf("pipelines/%d/runs", pipelineID),
	}, domain.RequestParams{})
	if err != nil {
		return nil, domain.WithContext(err, "runs of pipeline %d", pipelineID)
	}
	return domain.DecodeItems[domain.PipelineRun](result)
}
