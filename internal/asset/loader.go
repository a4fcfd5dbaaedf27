// Package asset fetches the static images embedded in reports.
package asset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrAssetNotFound indicates the requested image does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// ErrUnsupportedFormat indicates the image is neither PNG nor JPEG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Kind is the encoding of an image.
type Kind string

const (
	KindPNG  Kind = "png"
	KindJPEG Kind = "jpg"
)

// Image is an encoded image and its format.
type Image struct {
	Location string
	Kind     Kind
	Bytes    []byte
}

// Loader reads images from the local filesystem or from http(s) URLs.
type Loader struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewLoader builds an asset loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Loader{httpClient: client, logger: logger}
}

// Load returns the image at location. Missing files and HTTP 404 responses
// are reported as ErrAssetNotFound.
func (l *Loader) Load(ctx context.Context, location string) (*Image, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrAssetNotFound)
	}

	var (
		data []byte
		err  error
	)
	if isRemote(location) {
		data, err = l.fetch(ctx, location)
	} else {
		data, err = readFile(location)
	}
	if err != nil {
		return nil, err
	}

	kind, err := detectKind(location, data)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("asset loaded", zap.String("location", location), zap.String("kind", string(kind)), zap.Int("bytes", len(data)))
	return &Image{Location: location, Kind: kind, Bytes: data}, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download asset %s: %w", url, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, url)
	case resp.StatusCode() >= http.StatusBadRequest:
		return nil, fmt.Errorf("download asset %s: status %d", url, resp.StatusCode())
	}

	return resp.Body(), nil
}

func readFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, p)
		}
		return nil, fmt.Errorf("read asset %s: %w", p, err)
	}
	return data, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// detectKind trusts the content sniffing first and the extension second.
func detectKind(location string, data []byte) (Kind, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return KindPNG, nil
	case "image/jpeg":
		return KindJPEG, nil
	}

	switch strings.ToLower(path.Ext(strings.SplitN(location, "?", 2)[0])) {
	case ".png":
		return KindPNG, nil
	case ".jpg", ".jpeg":
		return KindJPEG, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, location)
}
