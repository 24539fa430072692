package application

import (
	"context"

	"azure-devops-mcp-server/internal/domain"
)

var expandValues = []string{"None", "Relations", "Fields", "Links", "All"}

func (r *Resources) workItemsTool() ToolConfig {
	return ToolConfig{
		Name:        "workItems",
		Description: "Read, create and update work items.",
		Examples: []map[string]interface{}{
			{"operation": "get", "getParams": map[string]interface{}{"id": 42, "expand": "Relations"}},
			{"operation": "create", "createParams": map[string]interface{}{"projectId": "Fabrikam", "type": "Task", "title": "Update docs"}},
			{"operation": "update", "updateParams": map[string]interface{}{"id": 42, "state": "Resolved"}},
		},
		Operations: []Operation{
			{
				Name:        "get",
				Description: "Get a work item by ID",
				Fields: []FieldSpec{
					{Name: "id", Type: TypeInteger, Required: true, Min: bound(1), Description: "Work item ID"},
					{Name: "expand", Type: TypeString, Enum: expandValues, Description: "Extra data to include"},
				},
				Handler: r.getWorkItem,
			},
			{
				Name:        "create",
				Description: "Create a work item",
				Fields: []FieldSpec{
					projectField("Project name or ID"),
					{Name: "type", Type: TypeString, Required: true, Description: "Work item type (e.g., Task, Bug, User Story)"},
					{Name: "title", Type: TypeString, Required: true, Description: "Title"},
					{Name: "description", Type: TypeString, Description: "Description (HTML allowed)"},
					{Name: "assignedTo", Type: TypeString, Description: "Assignee display name or email"},
				},
				Handler: r.createWorkItem,
			},
			{
				Name:        "update",
				Description: "Update fields of a work item",
				Fields: []FieldSpec{
					{Name: "id", Type: TypeInteger, Required: true, Min: bound(1), Description: "Work item ID"},
					{Name: "title", Type: TypeString, Description: "New title"},
					{Name: "description", Type: TypeString, Description: "New description"},
					{Name: "assignedTo", Type: TypeString, Description: "New assignee"},
					{Name: "state", Type: TypeString, Description: "New state (e.g., Active, Resolved, Closed)"},
				},
				Handler: r.updateWorkItem,
			},
		},
	}
}

func (r *Resources) getWorkItem(ctx context.Context, params Params) (interface{}, error) {
	return r.WorkItems.GetWorkItem(ctx, params.Int("id"), params.String("expand"))
}

func (r *Resources) createWorkItem(ctx context.Context, params Params) (interface{}, error) {
	project, err := r.project(params)
	if err != nil {
		return nil, err
	}
	return r.WorkItems.CreateWorkItem(ctx, project, params.String("type"), domain.WorkItemChanges{
		Title:       params.StringPtr("title"),
		Description: params.StringPtr("description"),
		AssignedTo:  params.StringPtr("assignedTo"),
	})
}

func (r *Resources) updateWorkItem(ctx context.Context, params Params) (interface{}, error) {
	changes := domain.WorkItemChanges{
		Title:       params.StringPtr("title"),
		Description: params.StringPtr("description"),
		AssignedTo:  params.StringPtr("assignedTo"),
		State:       params.StringPtr("state"),
	}
	if len(changes.PatchDocument()) == 0 {
		return nil, domain.NewValidationError("at least one of title, description, assignedTo or state is required")
	}
	return r.WorkItems.UpdateWorkItem(ctx, params.Int("id"), changes)
}
