// Package blob provides S3-compatible object storage for user documents.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
	ErrNotFound       = errors.New("object not found")
	ErrInvalidImage   = errors.New("invalid image")
)

// LogoObject is the fixed path the company logo is served from.
const LogoObject = "assets/logo.png"

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
)

var sizeDimensions = map[Size]int{
	SizeSmall:  128,
	SizeMedium: 512,
}

// Storage is the object-storage surface the document vault depends on.
type Storage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	UploadWithThumbnails(ctx context.Context, objectName string, reader io.Reader, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
	DeleteWithThumbnails(ctx context.Context, objectName string) error
}

type BlobService struct {
	client     *minio.Client
	bucketName string
}

func NewBlobService() (*BlobService, error) {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	accessKey := getEnv("MINIO_ACCESS_KEY", "minioadmin")
	secretKey := getEnv("MINIO_SECRET_KEY", "minioadmin")
	bucketName := getEnv("MINIO_BUCKET", "portal-docs")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object storage: %w", err)
	}

	return &BlobService{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// UserObject builds the object name for a user's uploaded document.
func UserObject(userID, fileName string) string {
	return path.Join(userID, fileName)
}

func (s *BlobService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *BlobService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

func (s *BlobService) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if _, err = obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return obj, nil
}

func (s *BlobService) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// UploadWithThumbnails uploads the original document and, for images, small
// and medium thumbnails. Thumbnail failures never fail the upload.
func (s *BlobService) UploadWithThumbnails(ctx context.Context, objectName string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := s.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return err
	}

	if !strings.HasPrefix(contentType, "image/") {
		return nil
	}

	for size, dim := range sizeDimensions {
		resized, err := resizeImage(data, dim)
		if err != nil {
			continue
		}
		name := thumbnailObjectName(objectName, size)
		_ = s.Upload(ctx, name, bytes.NewReader(resized), int64(len(resized)), "image/jpeg")
	}
	return nil
}

// DeleteWithThumbnails deletes the original and any thumbnails.
func (s *BlobService) DeleteWithThumbnails(ctx context.Context, objectName string) error {
	if err := s.Delete(ctx, objectName); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	for size := range sizeDimensions {
		_ = s.Delete(ctx, thumbnailObjectName(objectName, size))
	}
	return nil
}

func thumbnailObjectName(objectName string, size Size) string {
	ext := filepath.Ext(objectName)
	return strings.TrimSuffix(objectName, ext) + "_" + string(size) + ext
}

func resizeImage(data []byte, dim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	resized := imaging.Fit(img, dim, dim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
