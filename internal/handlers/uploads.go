package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

// readUpload loads a multipart file into memory. The content type is sniffed
// from the bytes; the browser-declared type is used only when sniffing finds
// nothing more specific than a generic binary stream.
func readUpload(fh *multipart.FileHeader, limit int64) (models.FileBlob, error) {
	if fh.Size > limit {
		return models.FileBlob{}, schema.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return models.FileBlob{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return models.FileBlob{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return models.FileBlob{}, schema.ErrFileTooLarge
	}

	contentType := baseType(mimetype.Detect(data).String())
	if contentType == "application/octet-stream" {
		if declared := baseType(fh.Header.Get("Content-Type")); declared != "" {
			contentType = declared
		}
	}

	return models.FileBlob{
		Name: fh.Filename,
		Type: contentType,
		Size: int64(len(data)),
		Data: data,
	}, nil
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}
