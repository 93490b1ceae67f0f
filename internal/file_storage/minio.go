package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sync"

	"github.com/educhain/certchain/internal/config"
	"github.com/educhain/certchain/internal/util"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

func NewMinioClient(cfg config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}

// Archiver keeps a private copy of every pinned metadata document.
type Archiver interface {
	ArchiveJSON(ctx context.Context, key string, doc any) error
}

// Noop is used when object storage is not configured.
type Noop struct{}

func (Noop) ArchiveJSON(ctx context.Context, key string, doc any) error {
	return nil
}

type MinioArchiver struct {
	client *minio.Client
	bucket string
	logger *zap.SugaredLogger

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewArchiver returns Noop when MINIO_ENDPOINT or MINIO_BUCKET is empty.
func NewArchiver(cfg config.MinioConfig, logger *zap.SugaredLogger) (Archiver, error) {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	if !cfg.Enabled() {
		logger.Info("Object storage not configured, metadata archive disabled")
		return Noop{}, nil
	}

	client, err := NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}

	return &MinioArchiver{
		client: client,
		bucket: cfg.BUCKET,
		logger: logger,
	}, nil
}

func (a *MinioArchiver) createBucketIfNotExists(ctx context.Context) error {
	a.bucketMu.Lock()
	defer a.bucketMu.Unlock()

	if a.bucketReady {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}

	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	a.bucketReady = true
	return nil
}

func (a *MinioArchiver) ArchiveJSON(ctx context.Context, key string, doc any) error {
	if err := a.createBucketIfNotExists(ctx); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}

	a.logger.Debugw("Archived metadata", "bucket", info.Bucket, "key", info.Key, "size", info.Size)
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// MetadataObjectKey is where the metadata of a certificate is stored, e.g. "certificates/CERT-1/Qm123abc.json".
func MetadataObjectKey(certificateId, cid string) string {
	id := unsafeKeyChars.ReplaceAllString(certificateId, "_")
	if id == "" {
		id = "_"
	}
	return path.Join("certificates", id, unsafeKeyChars.ReplaceAllString(cid, "_")+".json")
}
