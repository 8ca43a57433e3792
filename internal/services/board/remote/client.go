package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	platformotel "github.com/louisbranch/missionboard/internal/platform/otel"
	"github.com/louisbranch/missionboard/internal/platform/telemetry/metrics"
	"github.com/louisbranch/missionboard/internal/platform/timeouts"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const apiPrefix = "/api/v1"

// Operation names used for spans and metrics.
const (
	OpListMissions   = "list_missions"
	OpCreateMission  = "create_mission"
	OpJoinMission    = "join_mission"
	OpMyMissions     = "my_missions"
	OpJoinedMissions = "joined_missions"
	OpCrewCount      = "crew_count"
)

// maxErrorBody caps how much of a failed response body is kept on StatusError.
const maxErrorBody = 512

// Config configures a Client.
type Config struct {
	// BaseURL is the server origin; "/api/v1" is appended.
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	// HTTPClient defaults to a client with no timeout of its own.
	HTTPClient *http.Client
	// Timeout bounds each call. Zero uses timeouts.UpstreamRequest.
	Timeout time.Duration
	// Metrics receives one observation per call. Optional.
	Metrics *metrics.Recorder
}

// Client calls the mission board API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// StatusError reports a non-2xx reply.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s returned %s: %s", e.Op, e.Status, e.Body)
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", base)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.UpstreamRequest
	}
	return &Client{
		baseURL: base + apiPrefix,
		token:   strings.TrimSpace(cfg.Token),
		http:    httpClient,
		timeout: timeout,
		metrics: cfg.Metrics,
		tracer:  platformotel.Tracer("remote"),
	}, nil
}

// ListMissions returns missions matching filter.
func (c *Client) ListMissions(ctx context.Context, filter domain.MissionFilter) ([]domain.Mission, error) {
	filter = filter.Normalized()
	query := url.Values{}
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	path := "/missions"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var missions []domain.Mission
	if err := c.do(ctx, OpListMissions, http.MethodGet, path, nil, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// CreateMission submits draft and returns the new mission id.
func (c *Client) CreateMission(ctx context.Context, draft domain.MissionDraft) (int64, error) {
	var resp struct {
		MissionID int64 `json:"mission_id"`
	}
	if err := c.do(ctx, OpCreateMission, http.MethodPost, "/mission-management", draft, &resp); err != nil {
		return 0, err
	}
	return resp.MissionID, nil
}

// JoinMission joins the mission with id.
func (c *Client) JoinMission(ctx context.Context, id int64) error {
	path := "/missions/" + strconv.FormatInt(id, 10) + "/join"
	return c.do(ctx, OpJoinMission, http.MethodPost, path, struct{}{}, nil)
}

// MyMissions returns the missions the caller created.
func (c *Client) MyMissions(ctx context.Context) ([]domain.Mission, error) {
	var missions []domain.Mission
	if err := c.do(ctx, OpMyMissions, http.MethodGet, "/brawlers/my-missions", nil, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// JoinedMissions returns the missions the caller joined.
func (c *Client) JoinedMissions(ctx context.Context) ([]domain.Mission, error) {
	var missions []domain.Mission
	if err := c.do(ctx, OpJoinedMissions, http.MethodGet, "/brawlers/joined-missions", nil, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// CrewCount returns the caller's crew count.
func (c *Client) CrewCount(ctx context.Context) (int, error) {
	var count int
	if err := c.do(ctx, OpCrewCount, http.MethodGet, "/brawlers/crew-count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "remote."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", apiPrefix+path),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.ObserveUpstream(op, err)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
