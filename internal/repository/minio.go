package repository

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

type MinIORepository struct {
	client    *minio.Client
	region    string
	opTimeout time.Duration
	logger    zerolog.Logger

	ensureMu sync.Mutex
	ensured  map[string]bool
}

func NewMinIORepository(endpoint, accessKey, secretKey, region string, useSSL bool, opTimeout time.Duration, buckets []string, logger zerolog.Logger) (*MinIORepository, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}

	repo := &MinIORepository{
		client:    client,
		region:    region,
		opTimeout: opTimeout,
		logger:    logger,
		ensured:   make(map[string]bool),
	}

	// Best-effort bootstrap: на старте НЕ валим сервис, если MinIO ещё
	// не готов — бакеты досоздаются при первом обращении.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	for _, bucket := range buckets {
		if err := repo.ensureBucket(ctx, bucket); err != nil {
			logger.Error().Err(err).
				Str("endpoint", endpoint).
				Str("bucket", bucket).
				Msg("MinIO not ready during startup; will retry on demand")
			break
		}
	}

	logger.Info().
		Str("endpoint", endpoint).
		Bool("ssl", useSSL).
		Msg("Connected to MinIO")

	return repo, nil
}

func (r *MinIORepository) ensureBucket(ctx context.Context, bucket string) error {
	r.ensureMu.Lock()
	done := r.ensured[bucket]
	r.ensureMu.Unlock()
	if done {
		return nil
	}

	// Если MinIO ещё не отвечает — ретраим с растущим бэкоффом до дедлайна
	// ctx; мьютекс на время ожидания не держим, чтобы не сериализовать
	// загрузки в другие бакеты. Ошибки доступа не ретраим вовсе.
	backoff := 500 * time.Millisecond
	for {
		exists, err := r.client.BucketExists(ctx, bucket)
		if err == nil && !exists {
			err = r.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: r.region})
			if err == nil {
				r.logger.Info().Str("bucket", bucket).Msg("Created new bucket")
			} else if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
				// Параллельный вызов успел создать бакет первым.
				err = nil
			}
		}
		if err == nil {
			r.ensureMu.Lock()
			r.ensured[bucket] = true
			r.ensureMu.Unlock()
			return nil
		}

		if !isRetryableBucketErr(err) {
			return fmt.Errorf("minio bucket %s: %w", bucket, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("minio not ready: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

// Кривые креды ретраями не чинятся.
func isRetryableBucketErr(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return false
	}
	return true
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

func (r *MinIORepository) Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.ensureBucket(ctx, bucket); err != nil {
		return "", err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadInfo, err := r.client.PutObject(ctx, bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	r.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("etag", uploadInfo.ETag).
		Int64("size", size).
		Msg("File uploaded to MinIO")

	return r.objectURL(bucket, key), nil
}

func (r *MinIORepository) Remove(ctx context.Context, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.ensureBucket(ctx, bucket); err != nil {
		return err
	}

	if err := r.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	r.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Msg("File deleted from MinIO")

	return nil
}

func (r *MinIORepository) objectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", r.client.EndpointURL(), bucket, key)
}
