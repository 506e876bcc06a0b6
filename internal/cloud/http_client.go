package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const maxErrorBody = 4096

// HTTPClient talks to the studio generation backend. All request bodies are
// JSON except asset uploads, which are multipart (see upload.go).
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) Generation() GenerationService { return c }
func (c *HTTPClient) Chat() ChatService             { return c }
func (c *HTTPClient) Editor() AutoEditService       { return c }
func (c *HTTPClient) Assets() AssetService          { return c }

func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateAck, error) {
	var ack GenerateAck
	if err := c.postJSON(ctx, "/api/video/generate", req, &ack); err != nil {
		return nil, err
	}

	c.logger.Info("generation accepted",
		"project_id", req.ProjectID,
		"task_id", ack.TaskID,
		"model", ack.Model,
	)
	return &ack, nil
}

func (c *HTTPClient) Progress(ctx context.Context, projectID string) (*ProgressReport, error) {
	endpoint := "/api/video/progress/" + url.PathEscape(projectID)

	httpReq, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var report ProgressReport
	if err := c.do(httpReq, endpoint, &report); err != nil {
		return nil, err
	}

	report.State = normalizeState(report.Status)
	return &report, nil
}

func (c *HTTPClient) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error) {
	var resp ClassifyResponse
	if err := c.postJSON(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) AutoEdit(ctx context.Context, req AutoEditRequest) (*AutoEditResponse, error) {
	var resp AutoEditResponse
	if err := c.postJSON(ctx, "/api/creatomate/auto-edit", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("auto-edit applied",
		"project_id", req.ProjectID,
		"template_id", req.TemplateID,
		"render_id", resp.RenderID,
	)
	return &resp, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, endpoint, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", endpoint, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Studio-Request-Id", uuid.NewString())
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
