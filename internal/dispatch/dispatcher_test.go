package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/studiojuai/studio-agent/internal/chat"
	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/render"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

type fakeProject struct {
	id      string
	title   string
	presets []string
	idx     int
}

func (p *fakeProject) ID() string    { return p.id }
func (p *fakeProject) Title() string { return p.title }
func (p *fakeProject) CycleStylePreset() string {
	p.idx = (p.idx + 1) % len(p.presets)
	return p.presets[p.idx]
}

type fakeVideo struct {
	url string
}

func (v fakeVideo) Snapshot() render.Job {
	if v.url == "" {
		return render.Job{Status: render.StatusIdle}
	}
	return render.Job{Status: render.StatusCompleted, ResultURL: v.url}
}

type failingClassifier struct{}

func (failingClassifier) Classify(ctx context.Context, req cloud.ClassifyRequest) (*cloud.ClassifyResponse, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type scriptedClassifier struct {
	resp *cloud.ClassifyResponse
}

func (s scriptedClassifier) Classify(ctx context.Context, req cloud.ClassifyRequest) (*cloud.ClassifyResponse, error) {
	return s.resp, nil
}

type fakeAutoEdit struct {
	calls atomic.Int32
	err   error
}

func (f *fakeAutoEdit) AutoEdit(ctx context.Context, req cloud.AutoEditRequest) (*cloud.AutoEditResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &cloud.AutoEditResponse{Success: true, ProjectID: req.ProjectID, Status: "completed", Message: "자막이 추가되었습니다."}, nil
}

func newTestDispatcher(classifier cloud.ChatService, autoEdit cloud.AutoEditService, videoURL string) (*Dispatcher, *timeline.Store, *chat.Transcript, *fakeProject) {
	store := timeline.NewStore(nil)
	transcript := chat.NewTranscript()
	proj := &fakeProject{
		id:      "p1",
		title:   "여름 바다 브이로그",
		presets: []string{"warm_film", "cool_modern", "golden_hour", "cinematic_teal_orange"},
	}
	d := NewDispatcher(Config{
		Project:    proj,
		Classifier: classifier,
		AutoEdit:   autoEdit,
		Controller: fakeVideo{url: videoURL},
		Store:      store,
		Transcript: transcript,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		UserID:     "u1",
	})
	return d, store, transcript, proj
}

func TestDispatcher_SubtitleViaKeywordFallback(t *testing.T) {
	autoEdit := &fakeAutoEdit{}
	d, store, transcript, _ := newTestDispatcher(failingClassifier{}, autoEdit, "https://x/y.mp4")

	res := d.Dispatch(context.Background(), "자막 달아줘")

	if res.Action != ActionSubtitle {
		t.Fatalf("Action = %s, want subtitle", res.Action)
	}
	if !res.Success {
		t.Fatalf("Success = false: %+v", res)
	}
	if got := autoEdit.calls.Load(); got != 1 {
		t.Errorf("auto-edit calls = %d, want 1", got)
	}

	texts := store.ByKind(timeline.KindText)
	if len(texts) != 1 {
		t.Fatalf("store has %d text clips, want 1", len(texts))
	}
	if texts[0].Start != 1000 || texts[0].Duration != 5000 || texts[0].Track != timeline.TrackOverlay {
		t.Errorf("text clip placement = start %d, duration %d, track %d", texts[0].Start, texts[0].Duration, texts[0].Track)
	}

	turns := transcript.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript has %d turns, want 2", len(turns))
	}
	if turns[0].Role != chat.RoleUser || turns[1].Role != chat.RoleAssistant {
		t.Errorf("turn roles = %s, %s", turns[0].Role, turns[1].Role)
	}
	if turns[1].ActionStatus != chat.StatusSuccess {
		t.Errorf("assistant turn status = %s, want success", turns[1].ActionStatus)
	}
}

func TestDispatcher_NoActiveVideoFailsFast(t *testing.T) {
	autoEdit := &fakeAutoEdit{}
	d, store, transcript, _ := newTestDispatcher(failingClassifier{}, autoEdit, "")

	res := d.Dispatch(context.Background(), "자막 추가해줘")

	if res.Success {
		t.Fatal("Success = true, want failure without an active video")
	}
	if res.Reason != ReasonNoActiveVideo {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonNoActiveVideo)
	}
	if got := autoEdit.calls.Load(); got != 0 {
		t.Errorf("auto-edit calls = %d, want 0", got)
	}
	if store.Count() != 0 {
		t.Errorf("store has %d clips, want 0", store.Count())
	}

	turns := transcript.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript has %d turns, want 2", len(turns))
	}
	if turns[1].ActionStatus != chat.StatusError {
		t.Errorf("assistant turn status = %s, want error", turns[1].ActionStatus)
	}
}

func TestDispatcher_StyleCycleWrapsToOriginal(t *testing.T) {
	d, _, _, proj := newTestDispatcher(failingClassifier{}, &fakeAutoEdit{}, "https://x/y.mp4")

	start := proj.presets[proj.idx]
	for i := 0; i < len(proj.presets); i++ {
		res := d.Dispatch(context.Background(), "스타일 바꿔줘")
		if res.Action != ActionStyleChange || !res.Success {
			t.Fatalf("dispatch %d: %+v", i, res)
		}
	}
	if got := proj.presets[proj.idx]; got != start {
		t.Errorf("preset after full cycle = %q, want %q", got, start)
	}
}

func TestDispatcher_RemoteClassifierPreferred(t *testing.T) {
	classifier := scriptedClassifier{resp: &cloud.ClassifyResponse{
		Message:    "배경음악을 추가해드릴게요.",
		ActionType: "music_add",
		Routing:    &cloud.RoutingInfo{SelectedModel: "suno", Confidence: 0.92},
	}}
	d, store, transcript, _ := newTestDispatcher(classifier, &fakeAutoEdit{}, "https://x/y.mp4")

	res := d.Dispatch(context.Background(), "뭔가 신나는 느낌으로")

	if res.Action != ActionMusic {
		t.Fatalf("Action = %s, want music", res.Action)
	}
	audio := store.ByKind(timeline.KindAudio)
	if len(audio) != 1 {
		t.Fatalf("store has %d audio clips, want 1", len(audio))
	}
	if audio[0].Track != timeline.TrackAudio {
		t.Errorf("audio clip track = %d, want %d", audio[0].Track, timeline.TrackAudio)
	}

	turns := transcript.Turns()
	assistant := turns[len(turns)-1]
	if assistant.Routing == nil || assistant.Routing.SelectedModel != "suno" {
		t.Errorf("assistant turn routing = %+v, want suno decision", assistant.Routing)
	}
}

func TestDispatcher_NoneStillReplies(t *testing.T) {
	d, store, transcript, _ := newTestDispatcher(failingClassifier{}, &fakeAutoEdit{}, "")

	res := d.Dispatch(context.Background(), "안녕하세요")

	if res.Action != ActionNone {
		t.Fatalf("Action = %s, want none", res.Action)
	}
	if !res.Success || res.Message == "" {
		t.Errorf("conversational reply missing: %+v", res)
	}
	if store.Count() != 0 {
		t.Errorf("store has %d clips, want 0", store.Count())
	}
	if transcript.Len() != 2 {
		t.Errorf("transcript has %d turns, want 2", transcript.Len())
	}
}

func TestDispatcher_AutoEditFailureSurfaced(t *testing.T) {
	autoEdit := &fakeAutoEdit{err: errors.New("dial tcp: connection refused")}
	d, store, transcript, _ := newTestDispatcher(failingClassifier{}, autoEdit, "https://x/y.mp4")

	res := d.Dispatch(context.Background(), "자막 넣어줘")

	if res.Success {
		t.Fatal("Success = true, want failure on transport error")
	}
	if res.Reason != ReasonTransport {
		t.Errorf("Reason = %q, want %q", res.Reason, ReasonTransport)
	}
	if got := store.ByKind(timeline.KindText); len(got) != 0 {
		t.Errorf("store has %d text clips, want 0", len(got))
	}
	turns := transcript.Turns()
	if turns[len(turns)-1].ActionStatus != chat.StatusError {
		t.Errorf("assistant turn status = %s, want error", turns[len(turns)-1].ActionStatus)
	}
}

func TestActionFromRemote(t *testing.T) {
	cases := map[string]Action{
		"text_add":     ActionSubtitle,
		"music_add":    ActionMusic,
		"style_change": ActionStyleChange,
		"effect_apply": ActionEffect,
		"none":         ActionNone,
		"scene_split":  ActionNone,
	}
	for in, want := range cases {
		if got := actionFromRemote(in); got != want {
			t.Errorf("actionFromRemote(%q) = %s, want %s", in, got, want)
		}
	}
}
