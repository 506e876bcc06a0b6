package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studiojuai/studio-agent/internal/chat"
	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/render"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

const (
	defaultBrandColor = "#03C75A"
	defaultTemplateID = "studio-default"

	subtitleStartMs    = 1000
	subtitleDurationMs = 5000
	musicDurationMs    = 5000
)

// ProjectInfo supplies the mutable project fields actions run against.
type ProjectInfo interface {
	ID() string
	Title() string
	CycleStylePreset() string
}

// VideoSource reports the render job the project currently holds.
// *render.Controller satisfies it.
type VideoSource interface {
	Snapshot() render.Job
}

type Config struct {
	Project    ProjectInfo
	Classifier cloud.ChatService // nil disables the remote path
	AutoEdit   cloud.AutoEditService
	Controller VideoSource
	Store      *timeline.Store
	Transcript *chat.Transcript
	Logger     *slog.Logger
	UserID     string
	BrandColor string
	TemplateID string
}

// Dispatcher maps one piece of user free text to exactly one action,
// executes it, and records the outcome in the transcript. Classification
// prefers the remote director; a keyword fallback keeps commands working
// when the backend is unreachable.
type Dispatcher struct {
	project    ProjectInfo
	classifier cloud.ChatService
	autoEdit   cloud.AutoEditService
	controller VideoSource
	store      *timeline.Store
	transcript *chat.Transcript
	logger     *slog.Logger
	userID     string
	brandColor string
	templateID string
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BrandColor == "" {
		cfg.BrandColor = defaultBrandColor
	}
	if cfg.TemplateID == "" {
		cfg.TemplateID = defaultTemplateID
	}
	return &Dispatcher{
		project:    cfg.Project,
		classifier: cfg.Classifier,
		autoEdit:   cfg.AutoEdit,
		controller: cfg.Controller,
		store:      cfg.Store,
		transcript: cfg.Transcript,
		logger:     cfg.Logger,
		userID:     cfg.UserID,
		brandColor: cfg.BrandColor,
		templateID: cfg.TemplateID,
	}
}

// Dispatch classifies text, executes the matched action, and appends the
// user turn plus exactly one assistant turn carrying the action outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) Result {
	d.transcript.Append(chat.RoleUser, text, nil)

	cls := d.classify(ctx, text)

	if cls.Action == ActionNone {
		turn := d.transcript.Append(chat.RoleAssistant, cls.Reply, cls.Routing)
		return Result{Action: ActionNone, Success: true, Message: cls.Reply, TurnID: turn.ID}
	}

	if d.controller.Snapshot().ResultURL == "" {
		msg := "편집할 영상이 없습니다. 먼저 영상을 생성해주세요."
		turn := d.transcript.AppendPending(msg, cls.Routing)
		d.transcript.SetActionStatus(turn.ID, chat.StatusError)
		return Result{
			Action:  cls.Action,
			Success: false,
			Reason:  ReasonNoActiveVideo,
			Message: msg,
			TurnID:  turn.ID,
		}
	}

	turn := d.transcript.AppendPending(cls.Reply, cls.Routing)
	res := d.execute(ctx, cls.Action)
	res.Action = cls.Action
	res.TurnID = turn.ID

	status := chat.StatusSuccess
	if !res.Success {
		status = chat.StatusError
	}
	if err := d.transcript.SetActionStatus(turn.ID, status); err != nil {
		d.logger.Warn("failed to record action status", "turn_id", turn.ID, "error", err)
	}

	d.logger.Info("command dispatched",
		"action", cls.Action,
		"success", res.Success,
		"remote_classifier", cls.Remote,
	)
	return res
}

// classify delegates to the remote director and falls back to the embedded
// keyword table when it is unreachable.
func (d *Dispatcher) classify(ctx context.Context, text string) Classification {
	if d.classifier != nil {
		resp, err := d.classifier.Classify(ctx, cloud.ClassifyRequest{
			UserID:    d.userID,
			Message:   text,
			ProjectID: d.project.ID(),
		})
		if err == nil {
			cls := Classification{
				Action:  actionFromRemote(resp.ActionType),
				Reply:   resp.Message,
				Routing: resp.Routing,
				Remote:  true,
			}
			if cls.Reply == "" {
				cls.Reply = localClassify(text).Reply
			}
			return cls
		}
		d.logger.Warn("remote classifier unavailable, using keyword fallback", "error", err)
	}
	return localClassify(text)
}

func (d *Dispatcher) execute(ctx context.Context, action Action) Result {
	switch action {
	case ActionSubtitle:
		return d.addSubtitle(ctx)
	case ActionMusic:
		return d.addMusic()
	case ActionStyleChange:
		preset := d.project.CycleStylePreset()
		return Result{Success: true, Message: fmt.Sprintf("스타일을 %s(으)로 변경했습니다.", preset)}
	case ActionEffect:
		return Result{Success: true, Message: "효과를 적용했습니다."}
	default:
		return Result{Success: true}
	}
}

// addSubtitle runs the template edit on the current video and, on success,
// places one text clip on the overlay track.
func (d *Dispatcher) addSubtitle(ctx context.Context) Result {
	resp, err := d.autoEdit.AutoEdit(ctx, cloud.AutoEditRequest{
		ProjectID:          d.project.ID(),
		TemplateID:         d.templateID,
		Headline:           d.project.Title(),
		BackgroundVideoURL: d.controller.Snapshot().ResultURL,
		BrandColor:         d.brandColor,
	})
	if err != nil {
		d.logger.Warn("auto-edit request failed", "error", err)
		return Result{Success: false, Reason: ReasonTransport, Message: "자막 추가에 실패했습니다. 잠시 후 다시 시도해주세요."}
	}

	if _, err := d.store.Add(timeline.Clip{
		Kind:     timeline.KindText,
		Start:    subtitleStartMs,
		Duration: subtitleDurationMs,
		Track:    timeline.TrackOverlay,
		Label:    d.project.Title(),
	}); err != nil {
		return Result{Success: false, Reason: "ClipRejected", Message: err.Error()}
	}

	msg := resp.Message
	if msg == "" {
		msg = "자막이 추가되었습니다."
	}
	return Result{Success: true, Message: msg}
}

// addMusic places a placeholder audio clip. No network call is involved;
// the actual track is resolved at export time.
func (d *Dispatcher) addMusic() Result {
	if _, err := d.store.Add(timeline.Clip{
		Kind:     timeline.KindAudio,
		Start:    0,
		Duration: musicDurationMs,
		Track:    timeline.TrackAudio,
		Label:    "배경음악",
	}); err != nil {
		return Result{Success: false, Reason: "ClipRejected", Message: err.Error()}
	}
	return Result{Success: true, Message: "배경음악이 추가되었습니다."}
}
