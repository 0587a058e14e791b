package services

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"vibin_chat/apperrors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	mediaPrefix    = "chat-media/"
	presignExpires = 5 * time.Minute
)

// MediaService hands out presigned S3 URLs for chat attachments. Keys are scoped to a
// conversation and only its participants may obtain URLs for them.
type MediaService struct {
	Presign *s3.PresignClient
	Bucket  string
	Store   ChatStore

	now func() time.Time
}

// InitializeS3Client loads the default AWS credential chain for the region
func InitializeS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load AWS config", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func NewMediaService(client *s3.Client, bucket string, store ChatStore) *MediaService {
	return &MediaService{
		Presign: s3.NewPresignClient(client),
		Bucket:  bucket,
		Store:   store,
		now:     time.Now,
	}
}

// UploadURL generates a presigned URL for uploading an attachment into a conversation
func (m *MediaService) UploadURL(ctx context.Context, conversationID, userID, fileName, fileType string) (url string, key string, err error) {
	if fileName == "" || fileType == "" {
		return "", "", apperrors.Validation("fileName and fileType are required")
	}
	if err := m.authorize(ctx, conversationID, userID); err != nil {
		return "", "", err
	}

	key = mediaPrefix + conversationID + "/" + m.now().UTC().Format("20060102150405") + "-" + path.Base(fileName)
	req, err := m.Presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.CodeInternal, "failed to generate upload URL", err)
	}
	return req.URL, key, nil
}

// ReadURL generates a presigned URL for reading an attachment of a conversation
func (m *MediaService) ReadURL(ctx context.Context, conversationID, userID, key string) (string, error) {
	if !strings.HasPrefix(key, mediaPrefix+conversationID+"/") {
		return "", apperrors.Validation("key does not belong to this conversation")
	}
	if err := m.authorize(ctx, conversationID, userID); err != nil {
		return "", err
	}

	req, err := m.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpires))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to generate read URL", err)
	}
	return req.URL, nil
}

func (m *MediaService) authorize(ctx context.Context, conversationID, userID string) error {
	if conversationID == "" || userID == "" {
		return apperrors.Validation("conversationId and userId are required")
	}
	userA, userB, err := m.Store.GetConversationParticipants(ctx, conversationID)
	if errors.Is(err, ErrConversationNotFound) {
		return apperrors.ErrConversationNotFound
	}
	if err != nil {
		return apperrors.Persistence("failed to load conversation", err)
	}
	if userID != userA && userID != userB {
		return apperrors.ErrAccessDenied
	}
	return nil
}
