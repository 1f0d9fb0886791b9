package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Rrens/chat-client/internal/domain"
)

func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.doJSON(ctx, http.MethodGet, []string{"knowledge", "documents"}, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument sends the file as multipart form data with its title
func (c *Client) UploadDocument(ctx context.Context, title, filename string, content io.Reader) (*domain.Document, error) {
	var doc domain.Document
	err := c.doMultipart(ctx,
		[]string{"knowledge", "documents"},
		map[string]string{"title": title},
		filePart{field: "file", filename: filename, content: content},
		&doc,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id domain.ID) error {
	return c.doJSON(ctx, http.MethodDelete, []string{"knowledge", "documents", id.String()}, nil, nil)
}

// DocumentDownloadURL returns the address of the original file
func (c *Client) DocumentDownloadURL(id domain.ID) string {
	return c.URL("knowledge", "documents", id.String(), "download")
}

// DownloadDocument streams the original file into w
func (c *Client) DownloadDocument(ctx context.Context, id domain.ID, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, []string{"knowledge", "documents", id.String(), "download"}, nil, "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read download: %w", err)
	}
	return n, nil
}

func (c *Client) SearchDocuments(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	if err := c.doJSON(ctx, http.MethodPost, []string{"knowledge", "search"}, query, &results); err != nil {
		return nil, err
	}
	return results, nil
}
