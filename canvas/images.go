package canvas

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is encoded image data ready to be embedded.
type Image struct {
	Data []byte
	Type string // PNG, JPG or GIF
}

// LoadImage reads an image file. See DecodeImage.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("canvas: %w", err)
	}
	img, err := DecodeImage(data)
	if err != nil {
		return Image{}, fmt.Errorf("canvas: %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage sniffs data. PNG, JPEG and GIF are embedded as they are;
// BMP, TIFF and WebP are converted to PNG first.
func DecodeImage(data []byte) (Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decoding image: %w", err)
	}
	switch format {
	case "png":
		return Image{Data: data, Type: "PNG"}, nil
	case "jpeg":
		return Image{Data: data, Type: "JPG"}, nil
	case "gif":
		return Image{Data: data, Type: "GIF"}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("decoding %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("converting %s image: %w", format, err)
	}
	return Image{Data: buf.Bytes(), Type: "PNG"}, nil
}
