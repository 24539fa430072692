package application

import (
	"fmt"

	"azure-devops-mcp-server/internal/domain"
	"azure-devops-mcp-server/internal/infrastructure"
)

// Resources bundles the resource clients shared by the entity tools.
type Resources struct {
	Projects  *infrastructure.ProjectClient
	Git       *infrastructure.GitClient
	WorkItems *infrastructure.WorkItemClient
	Pipelines *infrastructure.PipelineClient

	// DefaultProject is used when an operation omits projectId.
	DefaultProject string
}

// NewResources creates the resource clients on top of one transport client.
func NewResources(api domain.APIClient, defaultProject string) *Resources {
	return &Resources{
		Projects:       infrastructure.NewProjectClient(api),
		Git:            infrastructure.NewGitClient(api),
		WorkItems:      infrastructure.NewWorkItemClient(api),
		Pipelines:      infrastructure.NewPipelineClient(api),
		DefaultProject: defaultProject,
	}
}

// ToolConfigs returns the configuration records of every resource tool in
// the order they are advertised.
func (r *Resources) ToolConfigs() []ToolConfig {
	return []ToolConfig{
		r.projectsTool(),
		r.repositoriesTool(),
		r.workItemsTool(),
		r.pullRequestsTool(),
		r.pipelinesTool(),
	}
}

// NewDefaultRegistry builds every resource tool and registers it.
func NewDefaultRegistry(resources *Resources, classifier *domain.ErrorClassifier, logger domain.Logger, opts ...ToolOption) (*Registry, error) {
	registry := NewRegistry(logger)
	for _, cfg := range resources.ToolConfigs() {
		tool, err := NewEntityTool(cfg, classifier, logger, opts...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// project returns projectId or the configured default project.
func (r *Resources) project(params Params) (string, error) {
	if project := params.String("projectId"); project != "" {
		return project, nil
	}
	if r.DefaultProject != "" {
		return r.DefaultProject, nil
	}
	return "", domain.NewValidationError("projectId is required when no default project is configured")
}

func projectField(description string) FieldSpec {
	return FieldSpec{
		Name:        "projectId",
		Type:        TypeString,
		Description: fmt.Sprintf("%s. Defaults to the configured project", description),
	}
}

func paginationFields() []FieldSpec {
	return []FieldSpec{
		{
			Name:        "maxResults",
			Type:        TypeInteger,
			Description: fmt.Sprintf("Maximum number of items to return (1-%d, default %d)", domain.MaxMaxResults, domain.DefaultMaxResults),
		},
		{
			Name:        "continuationToken",
			Type:        TypeString,
			Description: "Token from a previous page to continue listing",
		},
	}
}

func pageState(params Params) domain.PaginationState {
	return domain.Normalize(params.Int("maxResults"), params.String("continuationToken"))
}
