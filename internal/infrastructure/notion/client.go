package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/kurochkinivan/onboarding_ai/internal/config"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const (
	DefaultBaseURL = "https://api.notion.com"

	pageSize   = 100
	timeout    = 30 * time.Second
	maxRetries = 2
)

// Client reads pages shared with an internal integration.
type Client struct {
	log *slog.Logger
	api *notionapi.Client
}

// New builds a client for cfg.Token. A BaseURL other than the public API redirects
// every request to that host.
func New(log *slog.Logger, cfg config.Notion) *Client {
	httpClient := &http.Client{Timeout: timeout}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL != "" && baseURL != DefaultBaseURL {
		if target, err := url.Parse(baseURL); err == nil && target.Host != "" {
			httpClient.Transport = &hostRewriter{target: target, next: http.DefaultTransport}
		} else {
			log.Warn("ignoring invalid notion base url", slog.String("base_url", cfg.BaseURL))
		}
	}

	return &Client{
		log: log,
		api: notionapi.NewClient(
			notionapi.Token(cfg.Token),
			notionapi.WithHTTPClient(httpClient),
			notionapi.WithRetry(maxRetries),
		),
	}
}

// SearchPages lists every page shared with the integration.
func (c *Client) SearchPages(ctx context.Context) ([]*domain.SourceFile, error) {
	var (
		files  []*domain.SourceFile
		cursor notionapi.Cursor
	)

	for {
		resp, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{
			Filter:      notionapi.SearchFilter{Property: "object", Value: "page"},
			StartCursor: cursor,
			PageSize:    pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search pages: %w", err)
		}

		for _, obj := range resp.Results {
			page, ok := obj.(*notionapi.Page)
			if !ok {
				continue
			}

			files = append(files, &domain.SourceFile{
				ID:           page.ID.String(),
				Name:         pageTitle(page),
				MimeType:     domain.MimeTypeNotionPage,
				URL:          page.URL,
				ModifiedTime: page.LastEditedTime,
			})
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	c.log.DebugContext(ctx, "notion pages found", slog.Int("count", len(files)))

	return files, nil
}

// PageText returns the text of the top-level blocks of a page, one block per line.
func (c *Client) PageText(ctx context.Context, pageID string) (string, error) {
	var (
		sb     strings.Builder
		cursor notionapi.Cursor
	)

	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    pageSize,
		})
		if err != nil {
			return "", fmt.Errorf("failed to read page %s: %w", pageID, err)
		}

		for _, block := range resp.Results {
			if line := blockText(block); line != "" {
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return strings.TrimSpace(sb.String()), nil
}

// blockText reads the rich text of text-bearing blocks; other block types yield "".
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return joinRichText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return joinRichText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return joinRichText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return joinRichText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return joinRichText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return joinRichText(b.NumberedListItem.RichText)
	case *notionapi.QuoteBlock:
		return joinRichText(b.Quote.RichText)
	case *notionapi.ToDoBlock:
		return joinRichText(b.ToDo.RichText)
	case *notionapi.CalloutBlock:
		return joinRichText(b.Callout.RichText)
	default:
		return ""
	}
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if text := joinRichText(title.Title); text != "" {
				return text
			}
		}
	}
	return "Untitled"
}

func joinRichText(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.PlainText)
	}
	return sb.String()
}

// hostRewriter sends requests built for the public API to another host.
type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (h *hostRewriter) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = h.target.Scheme
	r.URL.Host = h.target.Host
	r.Host = h.target.Host

	return h.next.RoundTrip(r)
}
