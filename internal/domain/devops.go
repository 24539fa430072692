package domain

// TeamProject represents an Azure DevOps project.
type TeamProject struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	URL            string                 `json:"url,omitempty"`
	State          string                 `json:"state,omitempty"`
	Revision       int64                  `json:"revision,omitempty"`
	Visibility     string                 `json:"visibility,omitempty"`
	LastUpdateTime string                 `json:"lastUpdateTime,omitempty"`
	Capabilities   map[string]interface{} `json:"capabilities,omitempty"`
	DefaultTeam    *TeamRef               `json:"defaultTeam,omitempty"`
}

// TeamRef is a reference to a team.
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ProjectRef is the short project reference embedded in other resources.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GitRepository represents a Git repository.
type GitRepository struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	URL           string      `json:"url,omitempty"`
	DefaultBranch string      `json:"defaultBranch,omitempty"`
	Size          int64       `json:"size,omitempty"`
	RemoteURL     string      `json:"remoteUrl,omitempty"`
	WebURL        string      `json:"webUrl,omitempty"`
	IsDisabled    bool        `json:"isDisabled,omitempty"`
	Project       *ProjectRef `json:"project,omitempty"`
}

// GitRef is a Git reference as returned by the refs endpoint.
type GitRef struct {
	Name     string       `json:"name"`
	ObjectID string       `json:"objectId"`
	Creator  *IdentityRef `json:"creator,omitempty"`
	URL      string       `json:"url,omitempty"`
}

// Branch is the shaped form of a branch ref.
type Branch struct {
	Name     string `json:"name"`
	ObjectID string `json:"objectId"`
	Creator  string `json:"creator,omitempty"`
}

// IdentityRef is a reference to a user or group.
type IdentityRef struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UniqueName  string `json:"uniqueName,omitempty"`
}

// WorkItem represents an Azure DevOps work item.
type WorkItem struct {
	ID        int                    `json:"id"`
	Rev       int                    `json:"rev,omitempty"`
	Fields    map[string]interface{} `json:"fields"`
	Relations []WorkItemRelation     `json:"relations,omitempty"`
	Links     map[string]interface{} `json:"_links,omitempty"`
	URL       string                 `json:"url,omitempty"`
}

// WorkItemRelation is a link from a work item to another artifact.
type WorkItemRelation struct {
	Rel        string                 `json:"rel"`
	URL        string                 `json:"url"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Work item field reference names.
const (
	FieldTitle        = "System.Title"
	FieldDescription  = "System.Description"
	FieldAssignedTo   = "System.AssignedTo"
	FieldState        = "System.State"
	FieldWorkItemType = "System.WorkItemType"
	FieldTeamProject  = "System.TeamProject"
)

// PatchOperation is one JSON-patch operation of a work item create/update.
type PatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// GitPullRequest represents a pull request.
type GitPullRequest struct {
	PullRequestID int            `json:"pullRequestId"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	CreatedBy     *IdentityRef   `json:"createdBy,omitempty"`
	CreationDate  string         `json:"creationDate,omitempty"`
	SourceRefName string         `json:"sourceRefName"`
	TargetRefName string         `json:"targetRefName"`
	MergeStatus   string         `json:"mergeStatus,omitempty"`
	IsDraft       bool           `json:"isDraft,omitempty"`
	Repository    *GitRepository `json:"repository,omitempty"`
	Reviewers     []Reviewer     `json:"reviewers,omitempty"`
	URL           string         `json:"url,omitempty"`
}

// Reviewer is a pull request reviewer with its vote.
type Reviewer struct {
	IdentityRef
	Vote       int  `json:"vote"`
	IsRequired bool `json:"isRequired,omitempty"`
}

// Pipeline represents a pipeline definition.
type Pipeline struct {
	ID            int                    `json:"id"`
	Name          string                 `json:"name"`
	Folder        string                 `json:"folder,omitempty"`
	Revision      int                    `json:"revision,omitempty"`
	URL           string                 `json:"url,omitempty"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
}

// PipelineRun represents one run of a pipeline.
type PipelineRun struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Result       string `json:"result,omitempty"`
	CreatedDate  string `json:"createdDate,omitempty"`
	FinishedDate string `json:"finishedDate,omitempty"`
	URL          string `json:"url,omitempty"`
}

// WorkItemChanges holds the field values of a work item create or update.
// A nil field is left untouched.
type WorkItemChanges struct {
	Title       *string
	Description *string
	AssignedTo  *string
	State       *string
}

// PatchDocument returns the JSON-patch operations for the changes. The order
// is fixed: title, description, assignedTo, state.
func (c WorkItemChanges) PatchDocument() []PatchOperation {
	fields := []struct {
		name  string
		value *string
	}{
		{FieldTitle, c.Title},
		{FieldDescription, c.Description},
		{FieldAssignedTo, c.AssignedTo},
		{FieldState, c.State},
	}

	ops := make([]PatchOperation, 0, len(fields))
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		ops = append(ops, PatchOperation{Op: "add", Path: "/fields/" + f.name, Value: *f.value})
	}
	return ops
}
