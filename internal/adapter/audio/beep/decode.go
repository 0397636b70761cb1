package beep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// SupportedFormats lists the decodable file extensions.
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// formatOf returns the lower-case extension of uri if it is decodable.
func formatOf(uri string) (string, error) {
	name := uri
	if isRemote(uri) {
		u, err := url.Parse(uri)
		if err != nil {
			return "", fmt.Errorf("parse %q: %w", uri, err)
		}
		name = u.Path
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range SupportedFormats() {
		if ext == f {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
}

// decode picks a decoder by extension.
func decode(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

// open returns a seekable reader for a local path or an http(s) URL.
// Remote media is downloaded fully so decoders can seek.
func (c *Context) open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !isRemote(uri) {
		return os.Open(uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return memoryFile{bytes.NewReader(data)}, nil
}

// memoryFile is a downloaded body that decoders can seek.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}
