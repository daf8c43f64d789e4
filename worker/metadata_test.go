package worker

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"converter/logging"
)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "test-asset")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestExtractMetadataFromMetadataJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata.json",
		`{"points": 1000000, "boundingBox": {"min": [0, 0, 0], "max": [10, 10, 10]}}`)

	md := ExtractMetadata(dir, testLogger())

	if md.PointCount != 1000000 {
		t.Errorf("point count = %d, want 1000000", md.PointCount)
	}
	if md.BoundingBox == nil {
		t.Fatal("bounding box missing")
	}
	if _, ok := md.BoundingBox["min"]; !ok {
		t.Errorf("bounding box lost its min field: %#v", md.BoundingBox)
	}
	if md.ParseError != "" {
		t.Errorf("unexpected parse error flag: %q", md.ParseError)
	}
}

func TestExtractMetadataAlternatePointField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata.json", `{"numAccepted": 42}`)

	md := ExtractMetadata(dir, testLogger())

	if md.PointCount != 42 {
		t.Errorf("point count = %d, want 42", md.PointCount)
	}
}

func TestExtractMetadataFromCloudJS(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cloud.js",
		`var cloudData = {"points": 500, "boundingBox": {}};`)

	md := ExtractMetadata(dir, testLogger())

	if md.PointCount != 500 {
		t.Errorf("point count = %d, want 500", md.PointCount)
	}
	if md.ParseError != "" {
		t.Errorf("unexpected parse error flag: %q", md.ParseError)
	}
}

func TestExtractMetadataCorruptPrimaryDoesNotFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata.json", `{"points": not valid json`)

	md := ExtractMetadata(dir, testLogger())

	if md.PointCount != 0 {
		t.Errorf("point count = %d, want 0", md.PointCount)
	}
	if md.ParseError == "" {
		t.Error("expected a soft parse error flag")
	}
}

func TestExtractMetadataCorruptPrimaryFallsBackToCloudJS(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata.json", `not json at all`)
	writeFile(t, dir, "cloud.js", `var cloudData = {"points": 7};`)

	md := ExtractMetadata(dir, testLogger())

	if md.PointCount != 7 {
		t.Errorf("point count = %d, want 7", md.PointCount)
	}
}

func TestExtractMetadataEmptyDir(t *testing.T) {
	md := ExtractMetadata(t.TempDir(), testLogger())

	if md.PointCount != 0 {
		t.Errorf("point count = %d, want 0", md.PointCount)
	}
	if md.BoundingBox != nil {
		t.Errorf("unexpected bounding box: %#v", md.BoundingBox)
	}
	if md.ParseError != "" {
		t.Errorf("unexpected parse error flag: %q", md.ParseError)
	}
}
