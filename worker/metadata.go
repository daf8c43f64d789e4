package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"converter/logging"
	"converter/models"
)

// ExtractMetadata recovers point count and bounding box from the Potree
// output. The summary format is not stable across PotreeConverter versions:
// 2.x writes metadata.json, 1.x embeds an object literal in cloud.js. Each
// source is tried in order and a parse failure degrades to a soft flag on the
// result instead of failing the job.
func ExtractMetadata(outputDir string, log *logging.Logger) models.Metadata {
	md := models.Metadata{}

	if data, err := os.ReadFile(filepath.Join(outputDir, "metadata.json")); err == nil {
		if fields, err := parseMetadataObject(data); err == nil {
			applyFields(&md, fields)
			return md
		} else {
			md.ParseError = fmt.Sprintf("metadata.json: %v", err)
			log.Errorf("failed to parse metadata.json: %v", err)
		}
	}

	if data, err := os.ReadFile(filepath.Join(outputDir, "cloud.js")); err == nil {
		if fields, err := parseEmbeddedObject(data); err == nil {
			applyFields(&md, fields)
			return md
		} else {
			md.ParseError = strings.TrimSpace(md.ParseError + " " + fmt.Sprintf("cloud.js: %v", err))
			log.Errorf("failed to parse cloud.js: %v", err)
		}
	}

	return md
}

func parseMetadataObject(data []byte) (map[string]interface{}, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseEmbeddedObject handles cloud.js, a script assigning an object literal
// to a variable. The slice between the first '{' and the last '}' is close
// enough to JSON for every PotreeConverter release seen so far.
func parseEmbeddedObject(data []byte) (map[string]interface{}, error) {
	text := string(data)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no object literal found")
	}
	return parseMetadataObject([]byte(text[start : end+1]))
}

func applyFields(md *models.Metadata, fields map[string]interface{}) {
	md.PointCount = pointCount(fields)
	md.BoundingBox = map[string]interface{}{}
	if bb, ok := fields["boundingBox"].(map[string]interface{}); ok {
		md.BoundingBox = bb
	}
}

func pointCount(fields map[string]interface{}) int64 {
	for _, name := range []string{"points", "numAccepted"} {
		if v, ok := fields[name].(float64); ok {
			return int64(v)
		}
	}
	return 0
}
