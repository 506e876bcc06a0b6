package dispatch

import "github.com/studiojuai/studio-agent/internal/cloud"

// Action is the fixed vocabulary a chat command is classified into.
type Action string

const (
	ActionSubtitle    Action = "subtitle"
	ActionMusic       Action = "music"
	ActionStyleChange Action = "style_change"
	ActionEffect      Action = "effect"
	ActionNone        Action = "none"
)

// Failure reasons surfaced in Result.Reason.
const (
	ReasonNoActiveVideo = "NoActiveVideo"
	ReasonTransport     = "TransportError"
)

// Classification is the outcome of intent analysis, remote or local.
type Classification struct {
	Action  Action
	Reply   string
	Routing *cloud.RoutingInfo
	Remote  bool
}

// Result reports one dispatched command back to the caller. Exactly one
// assistant turn is appended per dispatch; TurnID identifies it.
type Result struct {
	Action  Action `json:"action"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	TurnID  string `json:"turn_id"`
}

// actionFromRemote maps the backend director's action_type strings onto the
// local vocabulary. Unknown types degrade to None rather than failing.
func actionFromRemote(actionType string) Action {
	switch actionType {
	case "text_add", "subtitle":
		return ActionSubtitle
	case "music_add", "music":
		return ActionMusic
	case "style_change", "style":
		return ActionStyleChange
	case "effect_apply", "effect":
		return ActionEffect
	default:
		return ActionNone
	}
}
