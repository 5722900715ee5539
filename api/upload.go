package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/pkg/errors"
)

const uploadCategory = "activity"

type uploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadImage uploads an activity image and returns the URL to store in the
// activity's picture list.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", path.Base(filename))
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", errors.Wrapf(err, "read %s", filename)
	}
	if err := w.WriteField("category", uploadCategory); err != nil {
		return "", errors.Wrap(err, "write category field")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart body")
	}

	var res uploadResult
	err = c.send(ctx, request{
		method: http.MethodPost,
		path:   "/upload/image",
		authed: true,
	}, &buf, w.FormDataContentType(), &res)
	if err != nil {
		return "", err
	}

	switch {
	case res.URL != "":
		return res.URL, nil
	case res.Filename != "":
		return "/uploads/" + uploadCategory + "/" + res.Filename, nil
	default:
		return "", errors.New("upload response has no url")
	}
}
