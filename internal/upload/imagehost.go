package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/cybernetics669/nadlan-website/internal/config"
)

const defaultImageHostBase = "https://api.cloudflare.com/client/v4"

// mimeTypes maps upload extensions to the MIME type sent to the image host.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".heic": "image/heic",
}

// ImageHostSaver uploads files to the remote image hosting service and
// returns the first delivery variant URL. Failures are surfaced to the
// caller; there is no retry and no fallback to local storage.
type ImageHostSaver struct {
	accountID string
	apiToken  string
	baseURL   string
	client    *http.Client
}

func NewImageHostSaver(cfg config.ImageHostConfig) *ImageHostSaver {
	base := cfg.BaseURL
	if base == "" {
		base = defaultImageHostBase
	}
	return &ImageHostSaver{
		accountID: cfg.AccountID,
		apiToken:  cfg.APIToken,
		baseURL:   strings.TrimSuffix(base, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type imageHostResponse struct {
	Result *struct {
		Variants []string `json:"variants"`
	} `json:"result"`
}

// Save submits the file as multipart form data and returns the first
// variant URL from the response. The subdir has no meaning remotely and is
// ignored.
func (s *ImageHostSaver) Save(filename string, r io.Reader, subdir string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filename)))
	header.Set("Content-Type", mimeFor(filename))
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/accounts/%s/images/v1", s.baseURL, s.accountID)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var decoded imageHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("image host returned malformed response: %w", err)
	}
	if decoded.Result == nil || len(decoded.Result.Variants) == 0 {
		return "", fmt.Errorf("image host response missing variants")
	}
	return decoded.Result.Variants[0], nil
}

// mimeFor derives the upload's MIME type from its extension.
func mimeFor(filename string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "image/jpeg"
}
