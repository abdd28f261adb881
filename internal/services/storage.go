package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"noticeboard/internal/config"
	"noticeboard/internal/logger"
	"noticeboard/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxFileSize  = 2 << 20  // 2MB на файл
	maxTotalSize = 10 << 20 // 10MB на все вложения одной отправки
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var allowedAttachmentTypes = map[string]struct{}{
	"application/pdf":    {},
	"image/jpeg":         {},
	"image/png":          {},
	"image/webp":         {},
	"image/gif":          {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var (
	ErrFileTooLarge    = errors.New("файл слишком большой: максимум 2MB")
	ErrTotalTooLarge   = errors.New("суммарный размер вложений превышает 10MB")
	ErrUnsupportedType = errors.New("неподдерживаемый тип файла")
	ErrBadObjectURL    = errors.New("не удалось разобрать URL объекта")
)

// UploadFile — один файл из multipart-формы.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// StorageService кладёт обложки и вложения в S3-совместимое хранилище
// и удаляет их по публичному URL.
type StorageService struct {
	client      *s3.Client
	covers      string
	attachments string
	publicBase  string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	return &StorageService{
		client:      client,
		covers:      cfg.CoversBucket,
		attachments: cfg.AttachmentsBucket,
		publicBase:  cfg.PublicStorageURL(),
	}, nil
}

// UploadCover кладёт обложку объявления и возвращает публичный URL.
func (s *StorageService) UploadCover(ctx context.Context, headlineID string, f UploadFile) (string, error) {
	log := logger.WithCtx(ctx)

	if f.Size > maxFileSize {
		return "", ErrFileTooLarge
	}
	if _, ok := allowedImageTypes[f.ContentType]; !ok {
		return "", ErrUnsupportedType
	}

	ext := filepath.Ext(f.Name)
	key := fmt.Sprintf("%s-%s%s", headlineID, uuid.New().String(), ext)

	if err := s.put(ctx, s.covers, key, f); err != nil {
		log.Error("Хранилище: ошибка загрузки обложки", zap.Error(err))
		return "", err
	}

	log.Info("Обложка загружена", zap.String("headline_id", headlineID), zap.String("key", key))
	return s.objectURL(s.covers, key), nil
}

// UploadAttachments загружает вложения параллельно, без гарантий порядка
// между собой. Первая ошибка делает неуспешной всю операцию; уже загруженные
// объекты не откатываются (принятый риск осиротевших файлов).
func (s *StorageService) UploadAttachments(ctx context.Context, headlineID string, files []UploadFile) ([]models.HeadlineFile, error) {
	log := logger.WithCtx(ctx)

	var total int64
	for _, f := range files {
		if f.Size > maxFileSize {
			return nil, ErrFileTooLarge
		}
		if _, ok := allowedAttachmentTypes[f.ContentType]; !ok {
			return nil, ErrUnsupportedType
		}
		total += f.Size
	}
	if total > maxTotalSize {
		return nil, ErrTotalTooLarge
	}

	results := make([]models.HeadlineFile, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f UploadFile) {
			defer wg.Done()
			key := fmt.Sprintf("%s/%s-%s", headlineID, uuid.New().String(), f.Name)
			if err := s.put(ctx, s.attachments, key, f); err != nil {
				errs[i] = fmt.Errorf("не удалось загрузить %s: %w", f.Name, err)
				return
			}
			results[i] = models.HeadlineFile{
				Name: f.Name,
				URL:  s.objectURL(s.attachments, key),
				Size: f.Size,
			}
		}(i, f)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			log.Error("Хранилище: ошибка загрузки вложений", zap.Error(err))
			return nil, err
		}
	}

	log.Info("Вложения загружены", zap.String("headline_id", headlineID), zap.Int("count", len(results)))
	return results, nil
}

// DeleteByURL удаляет объект, восстанавливая bucket и ключ из публичного URL.
func (s *StorageService) DeleteByURL(ctx context.Context, rawURL string) error {
	bucket, key, err := parseObjectURL(rawURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *StorageService) put(ctx context.Context, bucket, key string, f UploadFile) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f.Reader,
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(f.Size),
	})
	return err
}

func (s *StorageService) objectURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBase, bucket, key)
}

func parseObjectURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", ErrBadObjectURL
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadObjectURL
	}
	return parts[0], parts[1], nil
}
