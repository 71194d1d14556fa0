package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

// Thumbnail loads an image and scales it to width, keeping the aspect ratio.
// Images already narrower than width are returned as decoded.
func Thumbnail(path string, width int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if width <= 0 || img.Bounds().Dx() <= width {
		return img, nil
	}
	return resize.Resize(uint(width), 0, img, resize.Bilinear), nil
}
