package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// AddAttachment uploads a file to a card as multipart form data. The
// content is streamed from r rather than buffered, so large files do not
// load into memory.
func (c *Client) AddAttachment(ctx context.Context, cardID, filename string, r io.Reader) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("create form file: %w", err))
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("copy attachment: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	path := "/cards/" + url.PathEscape(cardID) + "/attachments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, pr)
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, nil, true)
}
