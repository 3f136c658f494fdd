package toggl

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/domain"
	"timesheet/internal/ports"
)

// DefaultBaseURL is the Toggl Track API host.
const DefaultBaseURL = "https://api.track.toggl.com"

// Client implements ports.TogglClient using the Toggl Track API v9.
type Client struct {
	baseURL   string
	apiToken  string
	http      *http.Client
	workspace int64
	log       zerolog.Logger
}

func NewClient(baseURL, apiToken string, workspaceID int64, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		apiToken:  apiToken,
		workspace: workspaceID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "toggl").Logger(),
	}
}

// ListTimeEntries fetches entries started in [from, to].
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, from, to time.Time) ([]ports.TogglEntry, error) {
	q := url.Values{}
	q.Set("start_date", from.UTC().Format(time.RFC3339))
	q.Set("end_date", to.UTC().Format(time.RFC3339))

	var raw []rawTimeEntry
	if err := c.get(ctx, "/api/v9/me/time_entries", q, &raw); err != nil {
		return nil, err
	}
	out := make([]ports.TogglEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, ports.TogglEntry{
			ID:          r.ID,
			Description: r.Description,
			ProjectID:   r.ProjectID,
			Tags:        r.Tags,
			Start:       r.Start,
			Stop:        r.Stop,
		})
	}
	c.log.Debug().Int("count", len(out)).Msg("listed time entries")
	return out, nil
}

// ListProjects fetches projects accessible to the configured token.
// If a workspace ID is configured, it scopes the request to that workspace.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	p := "/api/v9/me/projects"
	if c.workspace != 0 {
		p = fmt.Sprintf("/api/v9/workspaces/%d/projects", c.workspace)
	}
	var raw []rawProject
	if err := c.get(ctx, p, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Project{
			ID:          r.ID,
			WorkspaceID: r.WorkspaceID,
			Name:        r.Name,
			Active:      r.Active,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, into any) error {
	if c.apiToken == "" {
		return errors.New("toggl: missing api token")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	// Basic auth: token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiToken + ":api_token"))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("toggl: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("toggl: decode %s: %w", path, err)
	}
	return nil
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	Tags        []string   `json:"tags"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
}

type rawProject struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}
