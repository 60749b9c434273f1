package ember

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	// Register the decoders the texture-upload path accepts.
	_ "image/jpeg"
	_ "image/png"
)

// ImageRGBA is a decoded image as a tightly packed RGBA pixel buffer,
// 4 bytes per pixel, row-major.
type ImageRGBA struct {
	Width  int
	Height int
	Pixels []byte
}

// DecodeImage decodes PNG or JPEG bytes into RGBA pixels for texture
// upload. A decode failure returns ErrImageDecode (wrapped) and leaves
// renderer state untouched; the decoder never touches the GPU.
func DecodeImage(data []byte) (*ImageRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &ImageRGBA{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}
