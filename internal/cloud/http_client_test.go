package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPClient_Generate_Success(t *testing.T) {
	var receivedAuth string
	var receivedReq GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/video/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		receivedAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &receivedReq)

		json.NewEncoder(w).Encode(GenerateAck{
			Success:   true,
			ProjectID: receivedReq.ProjectID,
			TaskID:    "task-1",
			Status:    "processing",
			Progress:  10,
			Model:     "kling",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", testLogger())

	ack, err := client.Generate(context.Background(), GenerateRequest{
		ProjectID:   "p1",
		Prompt:      "sunset over the han river",
		Model:       "kling",
		AspectRatio: "9:16",
		Duration:    5,
		StylePreset: "warm_film",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", receivedAuth)
	}
	if receivedReq.Prompt != "sunset over the han river" {
		t.Errorf("prompt = %q not forwarded", receivedReq.Prompt)
	}
	if ack.TaskID != "task-1" {
		t.Errorf("TaskID = %q, want task-1", ack.TaskID)
	}
}

func TestHTTPClient_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"generation backend unavailable"}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", testLogger())

	_, err := client.Generate(context.Background(), GenerateRequest{ProjectID: "p1"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Generate() error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if !apiErr.IsRetryable() {
		t.Error("5xx error should be retryable")
	}
	if !strings.Contains(apiErr.Body, "unavailable") {
		t.Errorf("Body = %q, want server detail preserved", apiErr.Body)
	}
}

func TestHTTPClient_Progress_NormalizesTerminalStates(t *testing.T) {
	cases := []struct {
		raw  string
		want JobState
	}{
		{"completed", StateCompleted},
		{"succeed", StateCompleted},
		{"failed", StateFailed},
		{"queued", StatePreparing},
		{"processing", StateRendering},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/video/progress/p1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(ProgressReport{
				ProjectID: "p1",
				Status:    tc.raw,
				Progress:  50,
			})
		}))

		client := NewHTTPClient(server.URL, "tok", testLogger())
		report, err := client.Progress(context.Background(), "p1")
		server.Close()

		if err != nil {
			t.Fatalf("Progress(%s) error = %v", tc.raw, err)
		}
		if report.State != tc.want {
			t.Errorf("Progress(%s).State = %s, want %s", tc.raw, report.State, tc.want)
		}
	}
}

func TestHTTPClient_Classify_RoutingDecision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ClassifyResponse{
			Message:    "자막을 추가해드릴게요.",
			ActionType: "subtitle",
			Routing: &RoutingInfo{
				SelectedModel:   "kling",
				OptimizedPrompt: "optimized",
				Confidence:      0.92,
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", testLogger())
	resp, err := client.Classify(context.Background(), ClassifyRequest{UserID: "u1", Message: "자막 달아줘"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if resp.ActionType != "subtitle" {
		t.Errorf("ActionType = %q, want subtitle", resp.ActionType)
	}
	if resp.Routing == nil || resp.Routing.Confidence != 0.92 {
		t.Errorf("Routing = %+v, want confidence 0.92", resp.Routing)
	}
}

func TestHTTPClient_AutoEdit_Success(t *testing.T) {
	var received AutoEditRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/creatomate/auto-edit" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		json.NewEncoder(w).Encode(AutoEditResponse{
			Success:  true,
			RenderID: "render-9",
			Status:   "completed",
			Message:  "자막이 추가되었습니다.",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", testLogger())
	resp, err := client.AutoEdit(context.Background(), AutoEditRequest{
		ProjectID:          "p1",
		TemplateID:         "tmpl-subtitle",
		Headline:           "My Video",
		BackgroundVideoURL: "https://x/y.mp4",
		BrandColor:         "#03C75A",
	})
	if err != nil {
		t.Fatalf("AutoEdit() error = %v", err)
	}

	if received.BackgroundVideoURL != "https://x/y.mp4" {
		t.Errorf("background_video_url = %q not forwarded", received.BackgroundVideoURL)
	}
	if resp.RenderID != "render-9" {
		t.Errorf("RenderID = %q, want render-9", resp.RenderID)
	}
}

func TestNormalizeState_Unknown(t *testing.T) {
	if got := normalizeState("transcoding"); got != StateRendering {
		t.Errorf("normalizeState(transcoding) = %s, want %s", got, StateRendering)
	}
}
