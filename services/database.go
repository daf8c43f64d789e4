package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"converter/models"

	_ "github.com/lib/pq"
)

// Error messages stored on the asset record are truncated so a chatty tool
// cannot blow up the column.
const maxErrorMessageLen = 500

type DatabaseService struct {
	db *sql.DB
}

func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseService{db: db}, nil
}

// MarkAssetReady records a successful conversion: READY status, artifact
// URLs, extracted metadata, and any previous error message cleared. The asset
// row is created by the upload API and assumed to exist.
func (d *DatabaseService) MarkAssetReady(ctx context.Context, assetID string, urls models.ArtifactURLs, metadata models.Metadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var tilesURL sql.NullString
	if urls.Tiles != "" {
		tilesURL = sql.NullString{String: urls.Tiles, Valid: true}
	}

	query := `UPDATE assets
		SET status = $1, potree_url = $2, tiles_url = $3, metadata = $4,
		    error_message = NULL, updated_at = $5
		WHERE id = $6`

	_, err = d.db.ExecContext(ctx, query,
		models.StatusReady, urls.Potree, tilesURL, metadataJSON, time.Now(), assetID,
	)
	return err
}

// MarkAssetFailed records a failed conversion. Artifact URLs and metadata
// from any earlier run are left untouched.
func (d *DatabaseService) MarkAssetFailed(ctx context.Context, assetID string, message string) error {
	query := `UPDATE assets SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`
	_, err := d.db.ExecContext(ctx, query,
		models.StatusError, truncate(message, maxErrorMessageLen), time.Now(), assetID,
	)
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (d *DatabaseService) Close() error {
	return d.db.Close()
}
