package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
)

// Upload posts content as a multipart form with a single file field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, op string) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return c.Do(ctx, Request{
		Method:      "POST",
		Path:        path,
		Body:        &buf,
		ContentType: w.FormDataContentType(),
		Op:          op,
	})
}
