package timeline

import (
	"errors"
	"testing"
)

func videoClip(id, sourceURL string, start, duration int) Clip {
	return Clip{
		ID:        id,
		Kind:      KindVideo,
		Start:     start,
		Duration:  duration,
		Track:     TrackVideo,
		Label:     "clip " + id,
		SourceURL: sourceURL,
	}
}

func TestStore_Add_GeneratesUniqueIDs(t *testing.T) {
	s := NewStore(nil)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c, err := s.Add(Clip{Kind: KindText, Start: 0, Duration: 1000, Track: TrackOverlay, Label: "t"})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if c.ID == "" {
			t.Fatal("Add() returned empty clip id")
		}
		if seen[c.ID] {
			t.Fatalf("duplicate clip id generated: %s", c.ID)
		}
		seen[c.ID] = true
	}
	if s.Count() != 50 {
		t.Errorf("Count() = %d, want 50", s.Count())
	}
}

func TestStore_Add_RejectsDuplicateSource(t *testing.T) {
	s := NewStore(nil)

	if _, err := s.Add(videoClip("", "https://x/y.mp4", 0, 5000)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	_, err := s.Add(videoClip("", "https://x/y.mp4", 2000, 3000))
	if !errors.Is(err, ErrDuplicateSource) {
		t.Fatalf("Add() error = %v, want ErrDuplicateSource", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1 after duplicate rejection", s.Count())
	}
}

func TestStore_Add_RejectsInvalidClip(t *testing.T) {
	s := NewStore(nil)

	cases := []struct {
		name string
		clip Clip
	}{
		{"zero duration", Clip{Kind: KindVideo, Start: 0, Duration: 0}},
		{"negative start", Clip{Kind: KindVideo, Start: -1, Duration: 1000}},
		{"bad kind", Clip{Kind: "gif", Start: 0, Duration: 1000}},
		{"negative track", Clip{Kind: KindVideo, Start: 0, Duration: 1000, Track: -1}},
	}
	for _, tc := range cases {
		if _, err := s.Add(tc.clip); err == nil {
			t.Errorf("Add(%s) should return error", tc.name)
		}
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestStore_Remove_ClearsSelection(t *testing.T) {
	s := NewStore(nil)

	c1, _ := s.Add(videoClip("c1", "https://x/1.mp4", 0, 5000))
	s.Add(videoClip("c2", "https://x/2.mp4", 5000, 5000))

	if err := s.Select(c1.ID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	s.Remove(c1.ID)

	if s.Selected() != "" {
		t.Errorf("Selected() = %q, want empty after removing selected clip", s.Selected())
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStore_Remove_UnknownIDIsNoop(t *testing.T) {
	s := NewStore(nil)
	s.Add(videoClip("c1", "", 0, 5000))

	s.Remove("missing")

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStore_Remove_KeepsOtherSelection(t *testing.T) {
	s := NewStore(nil)
	s.Add(videoClip("c1", "", 0, 5000))
	s.Add(videoClip("c2", "", 5000, 5000))

	s.Select("c2")
	s.Remove("c1")

	if s.Selected() != "c2" {
		t.Errorf("Selected() = %q, want c2", s.Selected())
	}
}

func TestStore_Update_PatchesFields(t *testing.T) {
	s := NewStore(nil)
	s.Add(videoClip("c1", "", 0, 5000))

	start := 2500
	label := "renamed"
	updated, err := s.Update("c1", Patch{Start: &start, Label: &label})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Start != 2500 {
		t.Errorf("Start = %d, want 2500", updated.Start)
	}
	if updated.Label != "renamed" {
		t.Errorf("Label = %q, want renamed", updated.Label)
	}
	if updated.Duration != 5000 {
		t.Errorf("Duration = %d, want 5000 (unpatched)", updated.Duration)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	s := NewStore(nil)

	_, err := s.Update("missing", Patch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Update_RejectsInvalidPatch(t *testing.T) {
	s := NewStore(nil)
	s.Add(videoClip("c1", "", 0, 5000))

	bad := 0
	if _, err := s.Update("c1", Patch{Duration: &bad}); err == nil {
		t.Error("Update() should reject zero duration")
	}

	c, _ := s.Get("c1")
	if c.Duration != 5000 {
		t.Errorf("Duration = %d, want 5000 (unchanged after rejected patch)", c.Duration)
	}
}

func TestStore_Select_UnknownID(t *testing.T) {
	s := NewStore(nil)
	if err := s.Select("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Select() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ForTrack_OrderedByStart(t *testing.T) {
	s := NewStore(nil)
	s.Add(Clip{ID: "b", Kind: KindText, Start: 4000, Duration: 1000, Track: TrackOverlay})
	s.Add(Clip{ID: "a", Kind: KindText, Start: 1000, Duration: 1000, Track: TrackOverlay})
	s.Add(Clip{ID: "v", Kind: KindVideo, Start: 0, Duration: 5000, Track: TrackVideo})

	overlay := s.ForTrack(TrackOverlay)
	if len(overlay) != 2 {
		t.Fatalf("ForTrack() returned %d clips, want 2", len(overlay))
	}
	if overlay[0].ID != "a" || overlay[1].ID != "b" {
		t.Errorf("ForTrack() order = [%s %s], want [a b]", overlay[0].ID, overlay[1].ID)
	}
}

func TestStore_Clips_DisplayOrder(t *testing.T) {
	s := NewStore(nil)
	s.Add(Clip{ID: "t1", Kind: KindText, Start: 1000, Duration: 1000, Track: TrackOverlay})
	s.Add(Clip{ID: "v2", Kind: KindVideo, Start: 5000, Duration: 5000, Track: TrackVideo})
	s.Add(Clip{ID: "v1", Kind: KindVideo, Start: 0, Duration: 5000, Track: TrackVideo})

	clips := s.Clips()
	want := []string{"v1", "v2", "t1"}
	for i, id := range want {
		if clips[i].ID != id {
			t.Errorf("Clips()[%d].ID = %s, want %s", i, clips[i].ID, id)
		}
	}
}

func TestStore_TotalDuration_FloorsAtMinimum(t *testing.T) {
	s := NewStore(nil)

	if got := s.TotalDuration(); got != MinTimelineMs {
		t.Errorf("TotalDuration() = %d, want %d for empty timeline", got, MinTimelineMs)
	}

	s.Add(videoClip("c1", "", 0, 3000))
	if got := s.TotalDuration(); got != MinTimelineMs {
		t.Errorf("TotalDuration() = %d, want floor %d", got, MinTimelineMs)
	}
}

func TestStore_TotalDuration_MaxEndPlusMargin(t *testing.T) {
	s := NewStore(nil)
	s.Add(videoClip("c1", "", 0, 20000))
	s.Add(Clip{ID: "t1", Kind: KindText, Start: 1000, Duration: 5000, Track: TrackOverlay})

	want := 20000 + TrailingMarginMs
	if got := s.TotalDuration(); got != want {
		t.Errorf("TotalDuration() = %d, want %d", got, want)
	}
}

func TestStore_AllowsOverlapOnSameTrack(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Add(videoClip("c1", "", 0, 5000)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := s.Add(videoClip("c2", "", 2000, 5000)); err != nil {
		t.Fatalf("Add() overlapping clip error = %v, overlap should be allowed", err)
	}
}
