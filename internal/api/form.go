package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
)

// Upload is a binary attachment for a multipart request.
type Upload struct {
	FileName string
	Content  []byte
}

// field is an ordered multipart text field.
type field struct {
	name  string
	value string
}

// sendForm encodes text fields plus an optional file part and issues the
// request. partName is the fixed field name for the binary part ("image"
// for menu items, "picture" for ingredients).
func (c *Client) sendForm(ctx context.Context, method, path string, fields []field, partName string, up *Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("encode field %s: %w", f.name, err)
		}
	}
	if up != nil {
		name := up.FileName
		if name == "" {
			name = "upload.bin"
		}
		part, err := w.CreateFormFile(partName, name)
		if err != nil {
			return fmt.Errorf("encode %s part: %w", partName, err)
		}
		if _, err := part.Write(up.Content); err != nil {
			return fmt.Errorf("write %s part: %w", partName, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}
	return c.do(ctx, method, path, &buf, w.FormDataContentType(), out)
}
