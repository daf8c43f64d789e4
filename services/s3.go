package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"converter/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// StorageError marks a transport, auth or not-found failure talking to the
// object store. The pipeline treats it as fatal; the job is re-runnable so no
// rollback of partial uploads is attempted.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("s3 %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type S3Service struct {
	session    *session.Session
	bucket     string
	downloader *s3manager.Downloader
	uploader   *s3manager.Uploader
}

func NewS3Service(cfg *config.Config) *S3Service {
	awsCfg := &aws.Config{
		Region:   aws.String(cfg.S3Region),
		Endpoint: aws.String(cfg.S3Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		),
	}

	if cfg.S3UsePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess := session.Must(session.NewSession(awsCfg))

	return &S3Service{
		session:    sess,
		bucket:     cfg.S3Bucket,
		downloader: s3manager.NewDownloader(sess),
		uploader:   s3manager.NewUploader(sess),
	}
}

func (s *S3Service) Bucket() string { return s.bucket }

// Download fetches a single object to localPath. There is no local fallback
// for the input file, so any failure here aborts the job.
func (s *S3Service) Download(ctx context.Context, key string, localPath string) error {
	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer file.Close()

	_, err = s.downloader.DownloadWithContext(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &StorageError{Op: "download", Key: key, Err: err}
	}

	return nil
}

// UploadTree uploads every regular file under localRoot, preserving the
// directory structure as <keyPrefix>/<relative path>. Returns the number of
// files uploaded; the first failing file aborts the whole call.
func (s *S3Service) UploadTree(ctx context.Context, localRoot string, keyPrefix string) (int, error) {
	items, err := collectUploads(localRoot, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to walk %s: %w", localRoot, err)
	}

	for i, item := range items {
		if err := s.uploadFile(ctx, item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

type uploadItem struct {
	localPath       string
	key             string
	contentType     string
	contentEncoding string
}

func collectUploads(localRoot string, keyPrefix string) ([]uploadItem, error) {
	var items []uploadItem

	err := filepath.WalkDir(localRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(localRoot, path)
		if err != nil {
			return err
		}

		contentType, contentEncoding := DetectContentType(d.Name())
		items = append(items, uploadItem{
			localPath:       path,
			key:             keyPrefix + "/" + filepath.ToSlash(rel),
			contentType:     contentType,
			contentEncoding: contentEncoding,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *S3Service) uploadFile(ctx context.Context, item uploadItem) error {
	file, err := os.Open(item.localPath)
	if err != nil {
		return &StorageError{Op: "upload", Key: item.key, Err: err}
	}
	defer file.Close()

	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(item.key),
		Body:        file,
		ContentType: aws.String(item.contentType),
	}
	if item.contentEncoding != "" {
		input.ContentEncoding = aws.String(item.contentEncoding)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return &StorageError{Op: "upload", Key: item.key, Err: err}
	}
	return nil
}
