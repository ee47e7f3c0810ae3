// Package drive wraps the Google Drive API as the sync trigger's document
// source: list the PDFs of one folder and download their bytes.
package drive

import (
	"context"
	"fmt"
	"io"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// MaxDownloadSize caps a single document download (20MB).
const MaxDownloadSize = 20 * 1024 * 1024

// File is the listing metadata the sync trigger needs.
type File struct {
	ID           string
	Name         string
	ModifiedTime string
}

// Client lists and downloads PDF files from a fixed Drive folder.
type Client struct {
	svc      *gdrive.Service
	folderID string
}

// NewClient builds a Drive client from a service-account credentials file.
func NewClient(ctx context.Context, credentialsFile, folderID string) (*Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("drive credentials file not configured")
	}
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id not configured")
	}

	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gdrive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{svc: svc, folderID: folderID}, nil
}

// ListPDFs returns every non-trashed PDF in the configured folder.
func (c *Client) ListPDFs(ctx context.Context) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/pdf' and trashed=false", c.folderID)

	var files []File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, modifiedTime)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder: %w", err)
		}

		for _, f := range res.Files {
			files = append(files, File{
				ID:           f.Id,
				Name:         f.Name,
				ModifiedTime: f.ModifiedTime,
			})
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	return files, nil
}

// Download fetches the raw bytes of one file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	return data, nil
}
