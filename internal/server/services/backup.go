package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/securepass/vault/internal/common"
	sc "github.com/securepass/vault/internal/server/config"
)

// presignExpiry bounds how long a backup URL stays usable.
const presignExpiry = 15 * time.Minute

// BackupService hands out presigned S3 URLs for encrypted vault exports.
// The server never sees backup plaintext: clients encrypt the export with
// the derived key before uploading, so a leaked bucket leaks only
// envelopes.
type BackupService struct {
	config *sc.Config
}

// NewBackupService constructs a BackupService from server config.
func NewBackupService(config *sc.Config) *BackupService {
	return &BackupService{config: config}
}

// backupKeyPrefix returns the key space a user's backups live under.
// PresignDownload refuses keys outside it.
func backupKeyPrefix(userID string) string {
	return fmt.Sprintf("backups/%s/", userID)
}

// backupStorageKey builds a per-user, date-partitioned object key.
func backupStorageKey(userID string) string {
	d := timeNow()
	return fmt.Sprintf("%s%d/%d/%d/%v", backupKeyPrefix(userID), d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *BackupService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// PresignUpload returns a fresh object key and a presigned PUT URL the
// client can upload an encrypted export blob to.
func (s *BackupService) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := backupStorageKey(userID)

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignDownload returns a presigned GET URL for a previously uploaded
// backup object key. The key must lie under the caller's own prefix;
// asking for another user's object fails with common.ErrForbidden.
func (s *BackupService) PresignDownload(ctx context.Context, userID, key string) (string, error) {
	if !strings.HasPrefix(key, backupKeyPrefix(userID)) {
		return "", common.ErrForbidden
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
