// Package media is the media-host boundary: unsigned multipart uploads with
// byte-level progress, plus the pre-upload image compression step.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yashraj-ghemud/royal-state/internal/apperr"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// File is one selected file, fully buffered. Uploads in this app are a
// handful of megabytes at most, so buffering beats streaming complexity.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int64 { return int64(len(f.Data)) }

// ProgressFunc receives (bytes handed to the transport, total bytes).
type ProgressFunc func(loaded, total int64)

// Uploader is the media-host boundary the orchestrator depends on.
type Uploader interface {
	Upload(ctx context.Context, f *File, kind Kind, onProgress ProgressFunc) (string, error)
}

// Client posts unsigned multipart uploads to the host. No retries: a failed
// transfer aborts the whole submission.
type Client struct {
	http    *http.Client
	baseURL string
	cloud   string
	preset  string
}

func NewClient(baseURL, cloud, preset string) *Client {
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		// no overall client timeout: video uploads on slow links can
		// legitimately run long, ctx still carries cancellation
		http:    &http.Client{Transport: tr},
		baseURL: strings.TrimRight(baseURL, "/"),
		cloud:   cloud,
		preset:  preset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

type uploadError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload transfers one file and returns the host-assigned secure URL.
func (c *Client) Upload(ctx context.Context, f *File, kind Kind, onProgress ProgressFunc) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloud, kind)
	reader := &progressReader{
		r:     bytes.NewReader(body.Bytes()),
		total: int64(body.Len()),
		cb:    onProgress,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.ContentLength = reader.total

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &apperr.TransferError{Kind: apperr.TransferNetwork, Message: "upload failed, check your connection", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload uploadError
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return "", classifyRejection(resp.StatusCode, payload.Error.Message)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &apperr.TransferError{Kind: apperr.TransferHostRejected, Message: "malformed host response", Err: err}
	}
	if out.SecureURL == "" {
		return "", &apperr.TransferError{Kind: apperr.TransferHostRejected, Message: "host returned no media URL"}
	}
	return out.SecureURL, nil
}

// classifyRejection maps the host's structured error payload onto the
// transfer taxonomy.
func classifyRejection(status int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "file size") || strings.Contains(lower, "too large"):
		return &apperr.TransferError{Kind: apperr.TransferSizeRejected, Message: "file is too large for the media host"}
	case strings.Contains(lower, "resource type") || strings.Contains(lower, "invalid image") || strings.Contains(lower, "invalid video"):
		return &apperr.TransferError{Kind: apperr.TransferTypeRejected, Message: "file type not accepted by the media host"}
	default:
		msg := message
		if msg == "" {
			msg = fmt.Sprintf("media host rejected the upload (status %d)", status)
		}
		return &apperr.TransferError{Kind: apperr.TransferHostRejected, Message: msg}
	}
}

// progressReader reports bytes as the transport consumes the request body.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	cb     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.cb != nil {
			p.cb(p.loaded, p.total)
		}
	}
	return n, err
}
