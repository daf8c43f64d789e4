package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"converter/logging"
	"converter/models"
	"converter/services"

	"github.com/google/uuid"
)

// ObjectStore is the slice of the S3 service the pipeline needs.
type ObjectStore interface {
	Download(ctx context.Context, key string, localPath string) error
	UploadTree(ctx context.Context, localRoot string, keyPrefix string) (int, error)
}

// RecordStore updates the pre-existing asset row in the record store.
type RecordStore interface {
	MarkAssetReady(ctx context.Context, assetID string, urls models.ArtifactURLs, metadata models.Metadata) error
	MarkAssetFailed(ctx context.Context, assetID string, message string) error
}

// Pipeline runs one conversion end to end: resolve key, download, convert,
// upload, extract metadata, update the asset record. One asset per process;
// no stage is retried.
type Pipeline struct {
	job     models.Job
	bucket  string
	store   ObjectStore
	records RecordStore
	potree  services.Converter
	tiles   services.Converter
	log     *logging.Logger

	workDir string
}

func NewPipeline(job models.Job, bucket string, store ObjectStore, records RecordStore, potree, tiles services.Converter, log *logging.Logger) *Pipeline {
	return &Pipeline{
		job:     job,
		bucket:  bucket,
		store:   store,
		records: records,
		potree:  potree,
		tiles:   tiles,
		log:     log,
	}
}

// Run executes the pipeline. On any stage failure the asset record is marked
// ERROR before the error is returned, and the scratch directory is removed on
// every exit path. The cleanup deferral is registered first so it runs after
// error marking.
func (p *Pipeline) Run(ctx context.Context) error {
	defer p.cleanup()

	if err := p.run(ctx); err != nil {
		p.markFailed(ctx, err)
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	key, err := ResolveObjectKey(p.job.InputKey, p.job.InputURL, p.bucket)
	if err != nil {
		return err
	}

	workDir := filepath.Join(os.TempDir(), fmt.Sprintf("pc_%s_%s", p.job.AssetID, uuid.NewString()))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	p.workDir = workDir

	inputPath := filepath.Join(workDir, "input"+inputExtension(key))
	p.log.Infof("downloading key %q from bucket %q", key, p.bucket)
	if err := p.store.Download(ctx, key, inputPath); err != nil {
		return err
	}
	if info, err := os.Stat(inputPath); err == nil {
		p.log.Infof("downloaded %.2f MB", float64(info.Size())/(1024*1024))
	}

	potreeDir := filepath.Join(workDir, "potree")
	if err := p.potree.Convert(ctx, inputPath, potreeDir); err != nil {
		return err
	}

	var tilesDir string
	if p.tiles != nil {
		tilesDir = filepath.Join(workDir, "3dtiles")
		if err := p.tiles.Convert(ctx, inputPath, tilesDir); err != nil {
			return err
		}
	}

	var urls models.ArtifactURLs
	urls.Potree, err = p.uploadOutput(ctx, potreeDir, "processed/potree")
	if err != nil {
		return err
	}
	if tilesDir != "" {
		urls.Tiles, err = p.uploadOutput(ctx, tilesDir, "processed/3dtiles")
		if err != nil {
			return err
		}
	}

	metadata := ExtractMetadata(potreeDir, p.log)

	p.log.Infof("updating asset record")
	if err := p.records.MarkAssetReady(ctx, p.job.AssetID, urls, metadata); err != nil {
		return fmt.Errorf("failed to update asset record: %w", err)
	}

	p.log.Infof("conversion complete")
	return nil
}

func (p *Pipeline) uploadOutput(ctx context.Context, localDir string, prefixBase string) (string, error) {
	prefix := prefixBase + "/" + p.job.AssetID
	count, err := p.store.UploadTree(ctx, localDir, prefix)
	if err != nil {
		return "", err
	}
	p.log.Infof("uploaded %d files to %s", count, prefix)
	return p.job.OutputBaseURL + "/" + prefix, nil
}

// markFailed is best-effort: a failure to record the failure is logged and
// swallowed so the original error is what the process reports.
func (p *Pipeline) markFailed(ctx context.Context, cause error) {
	p.log.Errorf("marking asset as failed: %v", cause)
	if err := p.records.MarkAssetFailed(ctx, p.job.AssetID, cause.Error()); err != nil {
		p.log.Errorf("failed to update error status: %v", err)
	}
}

func (p *Pipeline) cleanup() {
	if p.workDir == "" {
		return
	}
	p.log.Infof("cleaning up working directory")
	// RemoveAll tolerates a partially missing tree.
	if err := os.RemoveAll(p.workDir); err != nil {
		p.log.Errorf("failed to remove working directory: %v", err)
	}
}

func inputExtension(key string) string {
	if strings.Contains(strings.ToLower(key), ".laz") {
		return ".laz"
	}
	return ".las"
}
