package timeline

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Store holds the ordered clip collection for one project. All mutation goes
// through the typed operations below; the mutex keeps them serialized when
// the render poller and the HTTP surface touch the store concurrently.
//
// Overlapping clips on the same track are allowed. The store keeps insertion
// order internally; display order is (track, start).
type Store struct {
	mu       sync.Mutex
	clips    []*Clip
	selected string
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// Add appends a clip to the collection. A clip with a non-empty SourceURL
// already present in the store is rejected with ErrDuplicateSource so that
// redundant completion callbacks cannot materialize the same media twice.
// An empty ID is filled in; a caller-provided ID must be unique.
func (s *Store) Add(clip Clip) (*Clip, error) {
	if err := clip.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if clip.SourceURL != "" {
		for _, existing := range s.clips {
			if existing.SourceURL == clip.SourceURL {
				return nil, ErrDuplicateSource
			}
		}
	}

	if clip.ID == "" {
		clip.ID = NewID()
	} else {
		for _, existing := range s.clips {
			if existing.ID == clip.ID {
				return nil, fmt.Errorf("clip id %q already in use", clip.ID)
			}
		}
	}

	stored := clip
	s.clips = append(s.clips, &stored)

	if s.logger != nil {
		s.logger.Info("clip added", "clip_id", stored.ID, "kind", stored.Kind, "track", stored.Track)
	}
	return &stored, nil
}

// Remove deletes a clip by id. Removing an unknown id is a no-op. If the
// removed clip was selected, the selection is cleared.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.clips {
		if c.ID == id {
			s.clips = append(s.clips[:i], s.clips[i+1:]...)
			if s.selected == id {
				s.selected = ""
			}
			if s.logger != nil {
				s.logger.Info("clip removed", "clip_id", id)
			}
			return
		}
	}
}

// Update applies a field patch to the clip with the given id.
func (s *Store) Update(id string, patch Patch) (*Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, ErrNotFound
	}

	updated := *c
	if patch.Start != nil {
		updated.Start = *patch.Start
	}
	if patch.Duration != nil {
		updated.Duration = *patch.Duration
	}
	if patch.Track != nil {
		updated.Track = *patch.Track
	}
	if patch.Label != nil {
		updated.Label = *patch.Label
	}
	if patch.SourceURL != nil {
		updated.SourceURL = *patch.SourceURL
	}
	if patch.Kind != nil {
		updated.Kind = *patch.Kind
	}

	if err := updated.validate(); err != nil {
		return nil, err
	}

	*c = updated
	out := *c
	return &out, nil
}

// Select marks the clip with the given id as the single selected clip.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return ErrNotFound
	}
	s.selected = id
	return nil
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Selected returns the id of the selected clip, or "" when none is selected.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Get returns a copy of the clip with the given id.
func (s *Store) Get(id string) (*Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(id)
	if c == nil {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

// Clips returns copies of all clips in display order (track, then start).
func (s *Store) Clips() []Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Clip, len(s.clips))
	for i, c := range s.clips {
		out[i] = *c
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Track != out[j].Track {
			return out[i].Track < out[j].Track
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// ForTrack returns copies of the clips on the given track, ordered by start.
func (s *Store) ForTrack(track int) []Clip {
	return s.filter(func(c *Clip) bool { return c.Track == track })
}

// ByKind returns copies of the clips with the given kind, ordered by start.
func (s *Store) ByKind(kind ClipKind) []Clip {
	return s.filter(func(c *Clip) bool { return c.Kind == kind })
}

func (s *Store) filter(keep func(*Clip) bool) []Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Clip
	for _, c := range s.clips {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// TotalDuration returns the timeline length in milliseconds: the furthest
// clip end plus a trailing margin, floored at MinTimelineMs so an empty
// timeline still renders a ruler.
func (s *Store) TotalDuration() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxEnd := 0
	for _, c := range s.clips {
		if end := c.End(); end > maxEnd {
			maxEnd = end
		}
	}
	total := maxEnd + TrailingMarginMs
	if total < MinTimelineMs {
		return MinTimelineMs
	}
	return total
}

func (s *Store) find(id string) *Clip {
	for _, c := range s.clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}
