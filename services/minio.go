package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

const MINIO_SVC = "minio_svc"

// MinIOService stores character photos. Photo references that are already
// absolute URLs are served as-is; object keys are presigned on the way out.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
	expiry     time.Duration
}

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	svc.applyConfig(cfg)
	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) applyConfig(cfg *shared.Config) {
	svc.endpoint = cfg.MinIOEndpoint
	svc.accessKey = cfg.MinIOAccessKey
	svc.secretKey = cfg.MinIOSecretKey
	svc.useSSL = cfg.MinIOUseSSL
	svc.bucketName = cfg.MinIOBucket
	svc.expiry = cfg.PhotoURLExpiry
}

func (svc *MinIOService) Start() error {
	if svc.endpoint == "" {
		log.Info("MinIO not configured, photo references are served as stored")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}
	svc.client = client

	if err := svc.ensureBucket(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	log.Infof("MinIO service started with endpoint: %s", svc.endpoint)
	return nil
}

// NewMinIOService connects outside the service container, for tooling
func NewMinIOService(cfg *shared.Config) (*MinIOService, error) {
	svc := &MinIOService{}
	svc.applyConfig(cfg)
	if err := svc.Start(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (svc *MinIOService) Enabled() bool {
	return svc != nil && svc.client != nil
}

func (svc *MinIOService) ensureBucket(ctx context.Context) error {
	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Infof("Created MinIO bucket: %s", svc.bucketName)
	}
	return nil
}

func (svc *MinIOService) UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (*minio.UploadInfo, error) {
	if !svc.Enabled() {
		return nil, fmt.Errorf("minio client not initialized")
	}

	uploadInfo, err := svc.client.PutObject(ctx, svc.bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to MinIO: %w", err)
	}
	return &uploadInfo, nil
}

func (svc *MinIOService) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if !svc.Enabled() {
		return "", fmt.Errorf("minio client not initialized")
	}

	presignedURL, err := svc.client.PresignedGetObject(ctx, svc.bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedURL.String(), nil
}

func (svc *MinIOService) ResolvePhotoURL(ctx context.Context, key string) string {
	if key == "" || isAbsoluteURL(key) || !svc.Enabled() {
		return key
	}
	url, err := svc.GetFileURL(ctx, key, svc.expiry)
	if err != nil {
		log.WithError(err).WithField("object", key).Warn("Failed to presign photo")
		return key
	}
	return url
}

func (svc *MinIOService) GetBucketName() string {
	return svc.bucketName
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
