package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azure-devops-mcp-server/internal/domain"
)

// mockDevOpsServer serves the given mux under the /contoso organization.
func mockDevOpsServer(mux *http.ServeMux) *httptest.Server {
	return httptest.NewServer(mux)
}

func TestProjectClient_ListProjectsFollowsContinuation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /contoso/_apis/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("continuationToken") == "" {
			w.Header().Set(continuationHeader, "page-2")
			fmt.Fprint(w, `{"count":2,"value":[{"id":"1","name":"Alpha"},{"id":"2","name":"Beta"}]}`)
			return
		}
		fmt.Fprint(w, `{"count":1,"value":[{"id":"3","name":"Gamma"}]}`)
	})
	server := mockDevOpsServer(mux)
	defer server.Close()

	client := NewProjectClient(newTestClient(t, server, newInstantTimer()))
	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "Gamma", projects[2].Name)
}

func TestProjectClient_GetProject(t *testing.T) {
	var gotCapabilities string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /contoso/_apis/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotCapabilities = r.URL.Query().Get("includeCapabilities")
		if r.PathValue("id") != "Fabrikam" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"The following project does not exist"}`)
			return
		}
		fmt.Fprint(w, `{"id":"p1","name":"Fabrikam","capabilities":{"versioncontrol":{"sourceControlType":"Git"}}}`)
	})
	server := mockDevOpsServer(mux)
	defer server.Close()

	client := NewProjectClient(newTestClient(t, server, newInstantTimer()))

	project, err := client.GetProject(context.Background(), "Fabrikam", true)
	require.NoError(t, err)
	assert.Equal(t, "p1", project.ID)
	assert.Equal(t, "true", gotCapabilities)
	assert.Contains(t, project.Capabilities, "versioncontrol")

	_, err = client.GetProject(context.Background(), "Missing", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project Missing")

	var ctxErr *domain.ContextError
	assert.ErrorAs(t, err, &ctxErr)
}
