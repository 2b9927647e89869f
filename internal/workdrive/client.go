package workdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Client talks to the WorkDrive REST API for one tenant.
// It is safe for use by concurrent conversations; the token cache is the
// only shared mutable state and is internally synchronized.
type Client struct {
	apiDomain string
	http      *http.Client
	tokens    *tokenProvider
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (for testing).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a WorkDrive client from credentials.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		apiDomain: strings.TrimSuffix(cfg.APIDomain, "/"),
		http:      http.DefaultClient,
		tokens:    newTokenProvider(cfg),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// listResponse mirrors the WorkDrive files-listing payload.
type listResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"attributes"`
	} `json:"data"`
}

// metadataResponse mirrors the single-file metadata payload.
type metadataResponse struct {
	Data struct {
		Attributes struct {
			DownloadURL string `json:"download_url"`
		} `json:"attributes"`
	} `json:"data"`
}

// List returns all items in a folder.
func (c *Client) List(ctx context.Context, folderID string) ([]Item, error) {
	url := fmt.Sprintf("%s/workdrive/api/v1/files/%s/files", c.apiDomain, folderID)

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list folder %q; %w", folderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list folder %q; unexpected status %d", folderID, resp.StatusCode)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode folder listing; %w", err)
	}

	items := make([]Item, 0, len(payload.Data))
	for _, d := range payload.Data {
		items = append(items, Item{
			ID:   d.ID,
			Name: d.Attributes.Name,
			Type: d.Attributes.Type,
		})
	}

	c.logger.Debug("listed folder", "folder_id", folderID, "items", len(items))
	return items, nil
}

// Download fetches a file's content to localPath. The download URL is read
// from the file's metadata first, then streamed to disk.
func (c *Client) Download(ctx context.Context, fileID, localPath string) error {
	metaURL := fmt.Sprintf("%s/workdrive/api/v1/files/%s", c.apiDomain, fileID)

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to get metadata for %q; %w", fileID, err)
	}

	var meta metadataResponse
	decodeErr := func() error {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to get metadata for %q; unexpected status %d", fileID, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&meta)
	}()
	if decodeErr != nil {
		return decodeErr
	}

	downloadURL := meta.Data.Attributes.DownloadURL
	if downloadURL == "" {
		return fmt.Errorf("no download_url in metadata for %q", fileID)
	}

	resp, err = c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to download %q; %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %q; unexpected status %d", fileID, resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %q; %w", localPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %q; %w", localPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %q; %w", localPath, err)
	}

	c.logger.Debug("downloaded file", "file_id", fileID, "path", localPath)
	return nil
}

// Upload stores a local file into a folder, overwriting any existing entry
// with the same name.
func (c *Client) Upload(ctx context.Context, folderID, localPath string) error {
	url := c.apiDomain + "/workdrive/api/v1/upload"
	filename := filepath.Base(localPath)

	// The body is rebuilt per attempt so a 401 retry does not reuse a
	// consumed reader.
	build := func() (*http.Request, error) {
		content, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q; %w", localPath, err)
		}

		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("content", filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
		if err := w.WriteField("parent_id", folderID); err != nil {
			return nil, err
		}
		if err := w.WriteField("override-name-exist", "true"); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	}

	resp, err := c.do(ctx, build)
	if err != nil {
		return fmt.Errorf("failed to upload %q; %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to upload %q; unexpected status %d", filename, resp.StatusCode)
	}

	c.logger.Debug("uploaded file", "folder_id", folderID, "name", filename)
	return nil
}

// Delete removes a file.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	url := fmt.Sprintf("%s/workdrive/api/v1/files/%s", c.apiDomain, fileID)

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q; %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete %q; unexpected status %d", fileID, resp.StatusCode)
	}

	c.logger.Debug("deleted file", "file_id", fileID)
	return nil
}

// FindFile looks up a file in a folder by exact name, case-insensitively.
func (c *Client) FindFile(ctx context.Context, folderID, name string) (Item, bool, error) {
	items, err := c.List(ctx, folderID)
	if err != nil {
		return Item{}, false, err
	}

	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

// SubfolderID resolves a direct subfolder by display name, case-insensitively.
// ok is false when the parent has no such subfolder.
func (c *Client) SubfolderID(ctx context.Context, parentID, name string) (id string, ok bool, err error) {
	items, err := c.List(ctx, parentID)
	if err != nil {
		return "", false, err
	}

	for _, item := range items {
		if item.IsFolder() && strings.EqualFold(item.Name, name) {
			return item.ID, true, nil
		}
	}
	return "", false, nil
}

// do issues the request produced by build with the current access token.
// A 401 response invalidates the cached token and the request is rebuilt
// and retried exactly once.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	resp, err := c.send(ctx, build)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		c.logger.Debug("access token rejected, refreshing")
		c.tokens.Invalidate()
		return c.send(ctx, build)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := build()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)

	return c.http.Do(req)
}
