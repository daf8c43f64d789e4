package models

// Asset statuses written to the record store. The record itself is created by
// the upload API; this job only transitions it.
const (
	StatusReady = "READY"
	StatusError = "ERROR"
)

// Job holds the immutable per-run inputs supplied on the command line.
type Job struct {
	AssetID       string
	InputKey      string
	InputURL      string
	OutputBaseURL string
	WithTiles     bool
}

// Metadata is the summary extracted from the converter output. Extraction is
// best-effort: ParseError carries a soft flag when a metadata source existed
// but could not be parsed.
type Metadata struct {
	PointCount  int64                  `json:"pointCount"`
	BoundingBox map[string]interface{} `json:"boundingBox,omitempty"`
	ParseError  string                 `json:"parseError,omitempty"`
}

// ArtifactURLs points at the uploaded output trees. Tiles is empty unless the
// job ran the 3D Tiles pass.
type ArtifactURLs struct {
	Potree string
	Tiles  string
}
