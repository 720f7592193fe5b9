// Package transport talks to the link controller backend and normalizes its responses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"linkmon/internal/models"
)

// Client implements models.Backend over the backend's single HTTP endpoint
type Client struct {
	endpoint  string
	providers []string
	h         *http.Client
}

// NewClient creates a client for the endpoint, e.g. http://127.0.0.1:8081/api/ping-data.
// providers names the latency columns read from each row; nil uses models.DefaultProviders.
func NewClient(endpoint string, timeout time.Duration, providers []string) *Client {
	if len(providers) == 0 {
		providers = models.DefaultProviders
	}
	return &Client{
		endpoint:  endpoint,
		providers: providers,
		h:         &http.Client{Timeout: timeout},
	}
}

// FetchLatencyBatch requests the newest rows of latency samples
func (c *Client) FetchLatencyBatch(ctx context.Context, rows int) (models.LatencyBatch, error) {
	body, err := c.post(ctx, "fetch latency", map[string]int{"Rows": rows})
	if err != nil {
		return models.LatencyBatch{}, err
	}
	return decodeLatencyBatch(body, c.providers)
}

// FetchLinkStates requests the power state of every link
func (c *Client) FetchLinkStates(ctx context.Context) (map[models.LinkID]models.LinkPowerReport, error) {
	body, err := c.get(ctx, "fetch link states", "ispstates=1")
	if err != nil {
		return nil, err
	}
	return decodeLinkStates(body)
}

// FetchActivityLog requests the newest activity log entries
func (c *Client) FetchActivityLog(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	body, err := c.get(ctx, "fetch activity log", fmt.Sprintf("logs=%d", limit))
	if err != nil {
		return nil, err
	}
	return decodeActivity(body)
}

// FetchAutorestartSettings requests the restart schedule of every link
func (c *Client) FetchAutorestartSettings(ctx context.Context) (map[models.LinkID]models.RestartSchedule, error) {
	body, err := c.get(ctx, "fetch autorestart settings", "pagestate=1")
	if err != nil {
		return nil, err
	}
	return decodeSettings(body)
}

// FetchNetworkStatus requests the active connection summary
func (c *Client) FetchNetworkStatus(ctx context.Context) (models.NetworkStatus, error) {
	body, err := c.get(ctx, "fetch network status", "networkstatus=1")
	if err != nil {
		return models.NetworkStatus{}, err
	}
	var status models.NetworkStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return models.NetworkStatus{}, &MalformedDataError{Op: "fetch network status", Field: "body"}
	}
	return status, nil
}

// SendRestartCommand asks the backend to restart a link now or for a duration
func (c *Client) SendRestartCommand(ctx context.Context, cmd models.RestartCommand) error {
	payload := map[string]int{"isp_id": cmd.Link.Index()}
	if cmd.Mode == models.RestartTimed {
		payload["restartfor"] = cmd.DurationMinutes
	} else {
		payload["restartnow"] = 1
	}
	_, err := c.post(ctx, "send restart command", payload)
	return err
}

// SendScheduleUpdate stores a new restart schedule for a link
func (c *Client) SendScheduleUpdate(ctx context.Context, upd models.ScheduleUpdate) error {
	s := upd.Schedule
	payload := map[string]any{"isp_id": upd.Link.Index()}
	switch s.Frequency {
	case models.Weekly:
		payload["weekly"] = []int{s.DayOfWeek, s.Hour, s.Minute, s.Second}
	case models.Monthly:
		payload["monthly"] = []int{s.WeekOfMonth, s.DayOfWeek, s.Hour, s.Minute, s.Second}
	default:
		payload["daily"] = []int{s.Hour, s.Minute, s.Second}
	}
	_, err := c.post(ctx, "send schedule update", payload)
	return err
}

// SendAutorestartToggle enables or disables automatic restarts for a link
func (c *Client) SendAutorestartToggle(ctx context.Context, link models.LinkID, enabled bool) error {
	payload := map[string]any{"autorestart": enabled, "isp_id": link.Index()}
	_, err := c.post(ctx, "send autorestart toggle", payload)
	return err
}

func (c *Client) get(ctx context.Context, op, query string) ([]byte, error) {
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+sep+query, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return c.do(op, req)
}

func (c *Client) post(ctx context.Context, op string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}
	return body, nil
}
