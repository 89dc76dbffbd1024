package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
)

// UploadImage checks, downscales and uploads one image. Type and size are
// checked against the declared metadata before any bytes are read or sent.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*model.Upload, error) {
	if err := imaging.CheckUpload(filename, contentType, size); err != nil {
		return nil, NewValidationError("file", err.Error(), err)
	}

	processed, err := imaging.Process(r)
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("%s: %v", filename, err), err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, uploadName(filename, processed.MIME)))
	h.Set("Content-Type", processed.MIME)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "could not build upload", Err: err}
	}
	if _, err := part.Write(processed.Data); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "could not build upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Kind: KindValidation, Message: "could not build upload", Err: err}
	}

	var up model.Upload
	err = c.do(ctx, call{
		op:          "upload_image",
		method:      http.MethodPost,
		path:        "/upload/image",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
		out:         &up,
	})
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// uploadName swaps the extension to match the re-encoded format and strips
// characters that would break the multipart header.
func uploadName(filename, mime string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	if mime == "image/jpeg" {
		return base + ".jpg"
	}
	return base + ".png"
}
