package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"github.com/ledongthuc/pdf"
)

const exportMimeType = "text/plain"

type Extractor struct {
	log       *slog.Logger
	documents DocumentSource
	pages     PageSource
}

// NewExtractor builds an extractor. pages may be nil when no Notion integration is configured.
func NewExtractor(log *slog.Logger, documents DocumentSource, pages PageSource) *Extractor {
	return &Extractor{
		log:       log,
		documents: documents,
		pages:     pages,
	}
}

func (e *Extractor) Extract(ctx context.Context, d domain.FileDescriptor) (string, error) {
	mimeType := strings.ToLower(d.MimeType)

	log := e.log.With(
		slog.String("file_id", d.FileID),
		slog.String("file_name", d.Name),
		slog.String("mime_type", d.MimeType),
	)

	switch {
	case d.Source == domain.SourceNotion || mimeType == domain.MimeTypeNotionPage:
		if e.pages == nil {
			return "", domain.ErrNotionNotConfigured
		}

		log.DebugContext(ctx, "reading notion page")

		text, err := e.pages.PageText(ctx, d.FileID)
		if err != nil {
			return "", fmt.Errorf("failed to read notion page: %w", err)
		}

		return text, nil

	case strings.Contains(mimeType, "pdf") || strings.Contains(mimeType, "openxmlformats"):
		log.DebugContext(ctx, "downloading binary payload")

		data, err := e.documents.Download(ctx, d.FileID, d.AccessToken)
		if err != nil {
			return "", fmt.Errorf("failed to download file: %w", err)
		}

		if strings.Contains(mimeType, "pdf") {
			return extractPDFText(data)
		}

		// Office XML payloads are zip archives; the raw bytes are passed through as is.
		return string(data), nil

	case strings.Contains(mimeType, "google-apps.document") || strings.Contains(mimeType, "google-apps.presentation"):
		log.DebugContext(ctx, "exporting native document as plain text")

		data, err := e.documents.Export(ctx, d.FileID, exportMimeType, d.AccessToken)
		if err != nil {
			return "", fmt.Errorf("failed to export file: %w", err)
		}

		return string(data), nil

	default:
		log.DebugContext(ctx, "unsupported file type, using placeholder")

		return UnsupportedPlaceholder(d.Name), nil
	}
}

func UnsupportedPlaceholder(fileName string) string {
	return fmt.Sprintf("Could not process file type for %s.", fileName)
}

func extractPDFText(data []byte) (text string, err error) {
	// the parser panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}
