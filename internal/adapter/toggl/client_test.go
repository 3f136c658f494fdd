package toggl

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListTimeEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v9/me/time_entries", r.URL.Path)
		assert.Equal(t, "2025-08-01T00:00:00Z", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-08-02T00:00:00Z", r.URL.Query().Get("end_date"))
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("tok:api_token")), r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "description": "Dev work", "project_id": 123, "tags": ["dev"], "start": "2025-08-01T09:00:00Z", "stop": "2025-08-01T10:30:00Z", "duration": 5400},
			{"id": 2, "description": "Running", "project_id": null, "tags": [], "start": "2025-08-01T11:00:00Z", "stop": null, "duration": -1}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0, zerolog.Nop())
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	entries, err := c.ListTimeEntries(context.Background(), from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(123), *entries[0].ProjectID)
	assert.Equal(t, 90*time.Minute, entries[0].Stop.Sub(entries[0].Start))
	assert.Nil(t, entries[1].Stop)
	assert.Nil(t, entries[1].ProjectID)
}

func TestClient_ListProjects_ScopesToWorkspace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v9/workspaces/456/projects", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": 123, "workspace_id": 456, "name": "Client A", "active": true}]`))
	}))
	defer srv.Close()

	projects, err := NewClient(srv.URL, "tok", 456, zerolog.Nop()).ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Client A", projects[0].Name)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok", 0, zerolog.Nop()).ListProjects(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")

	_, err = NewClient(srv.URL, "", 0, zerolog.Nop()).ListProjects(context.Background())
	assert.ErrorContains(t, err, "missing api token")
}
