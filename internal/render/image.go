package render

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	// decoders for wall photos
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/logging"
)

// BuiltinDemo is the image URI of the generated demo board.
const BuiltinDemo = "builtin:demo"

const fetchTimeout = 10 * time.Second

// LoadImage decodes the image at uri: a file path, a file:// or
// http(s):// URL, or BuiltinDemo.
func LoadImage(ctx context.Context, uri string) (image.Image, error) {
	switch {
	case uri == "":
		return nil, fmt.Errorf("no image set")
	case uri == BuiltinDemo:
		return DemoBoard(demoSize), nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return fetchImage(ctx, uri)
	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid image URI %q: %w", uri, err)
		}
		return readImage(u.Path)
	default:
		return readImage(uri)
	}
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	logging.Debug("Image loaded", zap.String("path", path), zap.String("format", format))
	return img, nil
}

func fetchImage(ctx context.Context, uri string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: HTTP %d", resp.StatusCode)
	}
	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", uri, err)
	}
	logging.Debug("Image fetched", zap.String("url", uri), zap.String("format", format))
	return img, nil
}
