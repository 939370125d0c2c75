package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "autosocial/configs"
	"autosocial/internal/models"
)

// MediaService owns the media object store. Posts reference objects by
// an opaque ref of the form s3://<bucket>/<key>.
type MediaService interface {
	Upload(ctx context.Context, file []byte) (string, error)
	Delete(ctx context.Context, mediaRef string) error
	PublicURL(mediaRef string) string
}

type mediaService struct {
	cfg    config.Config
	client *s3.Client
}

func NewMediaService(cfg config.Config) MediaService {
	awscfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")),
		awsconfig.WithRegion(cfg.AWS.Region),
	)
	if err != nil {
		slog.Info(err.Error())
		log.Fatal(err)
	}

	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	return &mediaService{cfg: cfg, client: client}
}

func (s *mediaService) Upload(ctx context.Context, file []byte) (string, error) {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	fileType, err := filetype.Match(file)
	if err != nil || fileType == types.Unknown {
		return "", models.NewValidationError("unsupported file type")
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return "", models.NewValidationError("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.MediaBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(fileType.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return fmt.Sprintf("s3://%s/%s", s.cfg.MediaBucket, key), nil
}

func (s *mediaService) Delete(ctx context.Context, mediaRef string) error {
	key, err := s.objectKey(mediaRef)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.MediaBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *mediaService) PublicURL(mediaRef string) string {
	key, err := s.objectKey(mediaRef)
	if err != nil {
		return ""
	}
	if s.cfg.MediaBaseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cfg.MediaBaseURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.MediaBucket, s.cfg.AWS.Region, key)
}

func (s *mediaService) objectKey(mediaRef string) (string, error) {
	prefix := fmt.Sprintf("s3://%s/", s.cfg.MediaBucket)
	if !strings.HasPrefix(mediaRef, prefix) {
		return "", fmt.Errorf("media ref %q does not reference bucket %s", mediaRef, s.cfg.MediaBucket)
	}
	return strings.TrimPrefix(mediaRef, prefix), nil
}
