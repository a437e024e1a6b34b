package searchclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/amirhf/imageSearch/services/search-web/models"
)

const (
	FieldText  = "text"
	FieldImage = "image"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeQuery builds the multipart body for q. The text part is written only
// when the text is non-empty and the image part only when an image is set, so
// an empty query yields a body with no parts.
func EncodeQuery(q models.Query) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if q.Text != "" {
		if err := w.WriteField(FieldText, q.Text); err != nil {
			return nil, "", fmt.Errorf("write text field: %w", err)
		}
	}

	if q.Image != nil {
		filename := q.Image.Filename
		if filename == "" {
			filename = FieldImage
		}
		contentType := q.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldImage, quoteEscaper.Replace(filename)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(q.Image.Data); err != nil {
			return nil, "", fmt.Errorf("write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
