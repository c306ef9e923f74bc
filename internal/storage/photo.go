package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/lapor-client/internal/models"
	"github.com/ignatzorin/lapor-client/internal/pkg/apperror"
)

// Типы изображений, которые принимает сервер отчётов.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DefaultMaxPhotoBytes лимит размера фото по умолчанию.
const DefaultMaxPhotoBytes int64 = 10 * 1024 * 1024

// LoadPhoto читает изображение с диска для вложения в отчёт.
func LoadPhoto(path string, maxBytes int64) (*models.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("не удалось открыть файл %s", path))
	}
	defer f.Close()

	return ReadPhoto(filepath.Base(path), f, maxBytes)
}

// ReadPhoto читает изображение из r, проверяя размер и реальный тип по магическим байтам.
func ReadPhoto(name string, r io.Reader, maxBytes int64) (*models.Photo, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}

	limitedReader := io.LimitedReader{R: r, N: maxBytes + 1}
	data, err := io.ReadAll(&limitedReader)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл")
	}
	if len(data) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым")
	}
	if int64(len(data)) > maxBytes {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("размер файла превышает лимит %d байт", maxBytes))
	}

	mime, err := DetectImageMIME(data)
	if err != nil {
		return nil, err
	}
	expectedExt := allowedImageTypes[mime]

	safeName := sanitizeFilename(name)
	ext := strings.ToLower(filepath.Ext(safeName))
	switch {
	case ext == "":
		safeName += expectedExt
	case !sameImageExt(ext, expectedExt):
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt))
	}

	return &models.Photo{
		Name: safeName,
		MIME: mime,
		Data: data,
	}, nil
}

// DetectImageMIME определяет тип изображения по магическим байтам.
// Допускаются только jpeg, png, webp и gif.
func DetectImageMIME(data []byte) (string, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла. Разрешены только изображения")
	}

	mime := kind.MIME.Value
	if _, ok := allowedImageTypes[mime]; !ok {
		return "", apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неподдерживаемый тип файла (%s)", mime))
	}
	return mime, nil
}

// .jpg и .jpeg - это одно и то же
func sameImageExt(ext, expected string) bool {
	if ext == expected {
		return true
	}
	return expected == ".jpg" && ext == ".jpeg"
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "photo"
	}
	return name
}
