package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// fileDisposition matches what multipart.Writer.CreateFormFile writes.
func fileDisposition(field, filename string) string {
	return fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename))
}

// HTTPUploader posts multipart {file, upload_preset} to a Cloudinary-style
// endpoint, including lovenest's own /api/uploads.
type HTTPUploader struct {
	Endpoint string
	Preset   string
	// Token is sent as a bearer token when set.
	Token string
	HTTP  *http.Client
}

func (u *HTTPUploader) Upload(ctx context.Context, f File, progress ProgressFunc) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if u.Preset != "" {
		if err := mw.WriteField("upload_preset", u.Preset); err != nil {
			return "", err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fileDisposition("file", f.Name))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint,
		&countingReader{r: &body, total: total, fn: progress})
	if err != nil {
		return "", err
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	client := u.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error any `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != nil {
			return "", fmt.Errorf("upload %s: %s: %v", f.Name, resp.Status, e.Error)
		}
		return "", fmt.Errorf("upload %s: %s", f.Name, resp.Status)
	}
	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("upload %s: response has no secure_url", f.Name)
	}
	return out.SecureURL, nil
}
