package chat

import (
	"errors"
	"testing"
)

func TestTranscript_AppendOrder(t *testing.T) {
	tr := NewTranscript()

	tr.Append(RoleUser, "first", nil)
	tr.Append(RoleAssistant, "second", nil)
	tr.Append(RoleUser, "third", nil)

	turns := tr.Turns()
	if len(turns) != 3 {
		t.Fatalf("Turns() returned %d, want 3", len(turns))
	}
	if turns[0].Content != "first" || turns[2].Content != "third" {
		t.Errorf("turns out of append order: %q, %q, %q", turns[0].Content, turns[1].Content, turns[2].Content)
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s, want user, assistant", turns[0].Role, turns[1].Role)
	}
	if turns[0].ID == turns[1].ID {
		t.Error("turn ids should be unique")
	}
}

func TestTranscript_SetActionStatus_Once(t *testing.T) {
	tr := NewTranscript()
	turn := tr.AppendPending("adding subtitles", nil)

	if turn.ActionStatus != StatusPending {
		t.Fatalf("ActionStatus = %s, want pending", turn.ActionStatus)
	}

	if err := tr.SetActionStatus(turn.ID, StatusSuccess); err != nil {
		t.Fatalf("SetActionStatus() error = %v", err)
	}

	err := tr.SetActionStatus(turn.ID, StatusError)
	if !errors.Is(err, ErrStatusFinal) {
		t.Fatalf("second SetActionStatus() error = %v, want ErrStatusFinal", err)
	}

	turns := tr.Turns()
	if turns[0].ActionStatus != StatusSuccess {
		t.Errorf("ActionStatus = %s, want success preserved", turns[0].ActionStatus)
	}
}

func TestTranscript_SetActionStatus_RejectsPending(t *testing.T) {
	tr := NewTranscript()
	turn := tr.AppendPending("working", nil)

	if err := tr.SetActionStatus(turn.ID, StatusPending); err == nil {
		t.Error("SetActionStatus(pending) should be rejected")
	}
}

func TestTranscript_SetActionStatus_NotFound(t *testing.T) {
	tr := NewTranscript()
	if err := tr.SetActionStatus("missing", StatusSuccess); !errors.Is(err, ErrTurnNotFound) {
		t.Fatalf("SetActionStatus() error = %v, want ErrTurnNotFound", err)
	}
}

func TestTranscript_TurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "original", nil)

	turns := tr.Turns()
	turns[0].Content = "mutated"

	if tr.Turns()[0].Content != "original" {
		t.Error("mutating the returned slice should not affect the transcript")
	}
}
