package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"vibin_chat/apperrors"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T) (*MediaService, string) {
	t.Helper()
	store := NewMemoryStore()
	conv, err := store.CreateConversation(context.Background(), "alice", "bob")
	require.NoError(t, err)

	client := s3.New(s3.Options{
		Region:      "ap-south-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	media := NewMediaService(client, "vibin-media", store)
	media.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return media, conv.ConversationID
}

func TestMediaService_UploadURL(t *testing.T) {
	media, convID := newTestMediaService(t)

	url, key, err := media.UploadURL(context.Background(), convID, "alice", "../photos/beach.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "chat-media/"+convID+"/20240501123000-beach.jpg", key)
	assert.Contains(t, url, "vibin-media")
	assert.Contains(t, url, "X-Amz-Signature")
}

func TestMediaService_ReadURL(t *testing.T) {
	media, convID := newTestMediaService(t)
	ctx := context.Background()

	_, key, err := media.UploadURL(ctx, convID, "bob", "voice.m4a", "audio/mp4")
	require.NoError(t, err)

	url, err := media.ReadURL(ctx, convID, "alice", key)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://"))

	_, err = media.ReadURL(ctx, convID, "alice", "chat-media/other/file.jpg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMediaService_RejectsOutsiders(t *testing.T) {
	media, convID := newTestMediaService(t)

	_, _, err := media.UploadURL(context.Background(), convID, "mallory", "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	_, _, err = media.UploadURL(context.Background(), "missing", "alice", "x.jpg", "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrNotFoundKind)

	_, _, err = media.UploadURL(context.Background(), convID, "alice", "", "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
