package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineClient_ListPipelinesCursor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /contoso/Fabrikam/_apis/pipelines", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("$top"))
		if r.URL.Query().Get("continuationToken") == "" {
			w.Header().Set(continuationHeader, "cursor-2")
			fmt.Fprint(w, `{"count":2,"value":[{"id":1,"name":"ci"},{"id":2,"name":"nightly"}]}`)
			return
		}
		fmt.Fprint(w, `{"count":1,"value":[{"id":3,"name":"release"}]}`)
	})
	server := mockDevOpsServer(mux)
	defer server.Close()
	client := NewPipelineClient(newTestClient(t, server, newInstantTimer()))

	first, cursor, err := client.ListPipelines(context.Background(), "Fabrikam", 2, "")
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, "cursor-2", cursor)

	second, cursor, err := client.ListPipelines(context.Background(), "Fabrikam", 2, cursor)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "release", second[0].Name)
	assert.Empty(t, cursor)
}

func TestPipelineClient_PipelineAndRuns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /contoso/Fabrikam/_apis/pipelines/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%s,"name":"ci","folder":"\\"}`, r.PathValue("id"))
	})
	mux.HandleFunc("GET /contoso/Fabrikam/_apis/pipelines/{id}/runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":2,"value":[{"id":9,"name":"20240101.2","state":"completed","result":"succeeded"},{"id":8,"name":"20240101.1","state":"completed","result":"failed"}]}`)
	})
	server := mockDevOpsServer(mux)
	defer server.Close()
	client := NewPipelineClient(newTestClient(t, server, newInstantTimer()))

	pipeline, err := client.GetPipeline(context.Background(), "Fabrikam", 1)
	require.NoError(t, err)
	assert.Equal(t, "ci", pipeline.Name)

	runs, err := client.ListPipelineRuns(context.Background(), "Fabrikam", 1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "failed", runs[1].Result)
}
