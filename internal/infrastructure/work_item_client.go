package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"azure-devops-mcp-server/internal/domain"
)

const jsonPatchContentType = "application/json-patch+json"

// WorkItemClient reads and writes work items.
type WorkItemClient struct {
	api domain.APIClient
}

// NewWorkItemClient creates a work item client on top of the transport client.
func NewWorkItemClient(api domain.APIClient) *WorkItemClient {
	return &WorkItemClient{api: api}
}

// GetWorkItem retrieves a work item by ID. Expand selects the extra data
// returned ("None", "Relations", "Fields", "Links" or "All").
func (c *WorkItemClient) GetWorkItem(ctx context.Context, id int, expand string) (*domain.WorkItem, error) {
	query := url.Values{}
	if expand != "" {
		query.Set("$expand", expand)
	}

	result, err := c.api.Call(ctx, domain.Endpoint{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("wit/workitems/%d", id),
	}, domain.RequestParams{Query: query})
	if err != nil {
		return nil, domain.WithContext(err, "work item %d", id)
	}
	return decodeWorkItem(result)
}

// CreateWorkItem creates a work item of the given type in a project.
func (c *WorkItemClient) CreateWorkItem(ctx context.Context, project, workItemType string, changes domain.WorkItemChanges) (*domain.WorkItem, error) {
	patch := changes.PatchDocument()
	if len(patch) == 0 {
		return nil, fmt.Errorf("work item create requires at least one field")
	}

	result, err := c.api.Call(ctx, domain.Endpoint{
		Method:  http.MethodPost,
		Project: project,
		Path:    "wit/workitems/$" + url.PathEscape(workItemType),
	}, domain.RequestParams{Body: patch, ContentType: jsonPatchContentType})
	if err != nil {
		return nil, domain.WithContext(err, "%s in project %s", workItemType, project)
	}
	return decodeWorkItem(result)
}

// UpdateWorkItem applies the changes to an existing work item.
func (c *WorkItemClient) UpdateWorkItem(ctx context.Context, id int, changes domain.WorkItemChanges) (*domain.WorkItem, error) {
	patch := changes.PatchDocument()
	if len(patch) == 0 {
		return nil, fmt.Errorf("work item update requires at least one field")
	}

	result, err := c.api.Call(ctx, domain.Endpoint{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("wit/workitems/%d", id),
	}, domain.RequestParams{Body: patch, ContentType: jsonPatchContentType})
	if err != nil {
		return nil, domain.WithContext(err, "work item %d", id)
	}
	return decodeWorkItem(result)
}

func decodeWorkItem(result *domain.RawResult) (*domain.WorkItem, error) {
	var item domain.WorkItem
	if err := result.Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}
