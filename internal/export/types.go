package export

// Event is one edit decision: a span of source media placed at a record
// position on the program timeline.
type Event struct {
	Name        string
	MediaURL    string
	SourceInMs  int
	SourceOutMs int
	RecordInMs  int
	RecordOutMs int
}

type ExportRequest struct {
	Format    string  `json:"format"`
	FrameRate float64 `json:"frame_rate"`
	OutputDir string  `json:"output_dir,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path,omitempty"`
	EventCount int    `json:"event_count"`
	Content    string `json:"content,omitempty"`
}
