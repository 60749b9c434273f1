package ember

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestDecodeImagePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Errorf("size = %dx%d, want 2x2", img.Width, img.Height)
	}
	if len(img.Pixels) != 16 {
		t.Fatalf("pixel buffer = %d bytes, want 16", len(img.Pixels))
	}
	if img.Pixels[0] != 255 || img.Pixels[3] != 255 {
		t.Errorf("top-left pixel = %v, want red", img.Pixels[0:4])
	}
}

func TestDecodeImageGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"))
	if !errors.Is(err, ErrImageDecode) {
		t.Errorf("err = %v, want ErrImageDecode", err)
	}
}
