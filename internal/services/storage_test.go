package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseObjectURL(t *testing.T) {
	bucket, key, err := parseObjectURL("https://cdn.example.com/covers/h1-abc.png")
	require.NoError(t, err)
	require.Equal(t, "covers", bucket)
	require.Equal(t, "h1-abc.png", key)

	// Ключ с вложенными каталогами не режется.
	bucket, key, err = parseObjectURL("https://cdn.example.com/attachments/h1/uuid-план.pdf")
	require.NoError(t, err)
	require.Equal(t, "attachments", bucket)
	require.Equal(t, "h1/uuid-план.pdf", key)

	_, _, err = parseObjectURL("https://cdn.example.com/")
	require.ErrorIs(t, err, ErrBadObjectURL)

	_, _, err = parseObjectURL("https://cdn.example.com/only-bucket")
	require.ErrorIs(t, err, ErrBadObjectURL)

	_, _, err = parseObjectURL("://bad")
	require.ErrorIs(t, err, ErrBadObjectURL)
}

func TestAttachmentValidation(t *testing.T) {
	s := &StorageService{covers: "covers", attachments: "attachments", publicBase: "https://cdn.example.com"}
	ctx := context.Background()

	// Слишком большой файл отклоняется до каких-либо загрузок.
	_, err := s.UploadAttachments(ctx, "h1", []UploadFile{
		{Name: "big.pdf", ContentType: "application/pdf", Size: maxFileSize + 1},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)

	// Недопустимый тип.
	_, err = s.UploadAttachments(ctx, "h1", []UploadFile{
		{Name: "run.exe", ContentType: "application/x-msdownload", Size: 100},
	})
	require.ErrorIs(t, err, ErrUnsupportedType)

	// Каждый файл в лимите, но сумма превышает общий.
	files := make([]UploadFile, 6)
	for i := range files {
		files[i] = UploadFile{Name: "a.pdf", ContentType: "application/pdf", Size: maxFileSize}
	}
	_, err = s.UploadAttachments(ctx, "h1", files)
	require.ErrorIs(t, err, ErrTotalTooLarge)
}

func TestCoverValidation(t *testing.T) {
	s := &StorageService{covers: "covers", publicBase: "https://cdn.example.com"}
	ctx := context.Background()

	_, err := s.UploadCover(ctx, "h1", UploadFile{Name: "big.png", ContentType: "image/png", Size: maxFileSize + 1})
	require.ErrorIs(t, err, ErrFileTooLarge)

	// Обложка обязана быть изображением: pdf не проходит.
	_, err = s.UploadCover(ctx, "h1", UploadFile{Name: "doc.pdf", ContentType: "application/pdf", Size: 100})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestObjectURL(t *testing.T) {
	s := &StorageService{publicBase: "https://cdn.example.com"}
	require.Equal(t, "https://cdn.example.com/covers/h1-x.png", s.objectURL("covers", "h1-x.png"))
}
