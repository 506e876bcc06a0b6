package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/studiojuai/studio-agent/internal/timeline"
)

// EventsFromClips maps the video track onto EDL events in record order.
// Clips without source media are skipped; they have nothing to cut from.
func EventsFromClips(clips []timeline.Clip) []Event {
	ordered := make([]timeline.Clip, 0, len(clips))
	for _, c := range clips {
		if c.Track != timeline.TrackVideo || c.SourceURL == "" {
			continue
		}
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	events := make([]Event, 0, len(ordered))
	for _, c := range ordered {
		name := c.Label
		if name == "" {
			name = string(c.Kind)
		}
		events = append(events, Event{
			Name:        SanitizeName(name, 64),
			MediaURL:    c.SourceURL,
			SourceInMs:  0,
			SourceOutMs: c.Duration,
			RecordInMs:  c.Start,
			RecordOutMs: c.Start + c.Duration,
		})
	}
	return events
}

// GenerateEDL renders events as a CMX 3600 edit decision list.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		srcIn := msToTimecode(ev.SourceInMs, fps)
		srcOut := msToTimecode(ev.SourceOutMs, fps)
		recIn := msToTimecode(ev.RecordInMs, fps)
		recOut := msToTimecode(ev.RecordOutMs, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.Name),
			fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaURL),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
