package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	maxDownloadSize = 64 << 20
	listPageSize    = 100

	fileFields = "nextPageToken, files(id, name, mimeType, webViewLink, modifiedTime)"
)

// Client talks to the Drive v3 API on behalf of the user owning the access token.
type Client struct {
	log      *slog.Logger
	endpoint string
}

// New builds a Drive client. endpoint overrides the API base path and may be empty.
func New(log *slog.Logger, endpoint string) *Client {
	return &Client{
		log:      log,
		endpoint: endpoint,
	}
}

func (c *Client) service(ctx context.Context, accessToken string) (*drive.Service, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})),
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return svc, nil
}

// Download fetches the binary content of a file.
func (c *Client) Download(ctx context.Context, fileID, accessToken string) ([]byte, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}

	return readBody(resp)
}

// Export converts a Google-native document to mimeType and returns the result.
func (c *Client) Export(ctx context.Context, fileID, mimeType, accessToken string) ([]byte, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file %s as %s: %w", fileID, mimeType, err)
	}

	return readBody(resp)
}

// ListFiles lists importable files, newest first. An empty folderID searches the whole drive.
func (c *Client) ListFiles(ctx context.Context, accessToken, folderID string) ([]*domain.SourceFile, error) {
	clauses := make([]string, 0, len(domain.ImportableMimeTypes))
	for _, m := range domain.ImportableMimeTypes {
		clauses = append(clauses, fmt.Sprintf("mimeType='%s'", m))
	}

	query := "(" + strings.Join(clauses, " or ") + ") and trashed=false"
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(folderID))
	}

	return c.list(ctx, accessToken, query)
}

func (c *Client) ListFolders(ctx context.Context, accessToken string) ([]*domain.SourceFile, error) {
	return c.list(ctx, accessToken, fmt.Sprintf("mimeType='%s' and trashed=false", domain.MimeTypeGoogleFolder))
}

func (c *Client) list(ctx context.Context, accessToken, query string) ([]*domain.SourceFile, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var files []*domain.SourceFile

	err = svc.Files.List().
		Q(query).
		Fields(fileFields).
		OrderBy("modifiedTime desc").
		PageSize(listPageSize).
		IncludeItemsFromAllDrives(true).
		SupportsAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, toSourceFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list drive files: %w", err)
	}

	c.log.DebugContext(ctx, "drive files listed", slog.Int("count", len(files)))

	return files, nil
}

func toSourceFile(f *drive.File) *domain.SourceFile {
	file := &domain.SourceFile{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		URL:      f.WebViewLink,
	}

	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		file.ModifiedTime = t
	}

	return file
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxDownloadSize)
	}

	return data, nil
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
