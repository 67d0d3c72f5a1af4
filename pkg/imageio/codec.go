// Package imageio loads, saves and resizes RGB rasters.
//
// TIFF, JPEG and PNG are supported for both reading and writing. Every
// failure from the file system or a codec wraps ErrIO.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"cubepano/internal/models"
)

// ErrIO marks a read, write or codec failure
var ErrIO = errors.New("image i/o failure")

// Format is an on-disk raster encoding
type Format int

const (
	FormatJPEG Format = iota
	FormatTIFF
	FormatPNG
)

// DefaultJPEGQuality is used when a caller passes a quality <= 0
const DefaultJPEGQuality = 90

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatTIFF:
		return "tiff"
	case FormatPNG:
		return "png"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the canonical file extension without the dot
func (f Format) Ext() string {
	switch f {
	case FormatTIFF:
		return "tif"
	case FormatPNG:
		return "png"
	default:
		return "jpg"
	}
}

// FormatFromExt picks a format from a file name or bare extension
func FormatFromExt(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = "." + strings.ToLower(name)
	}
	switch ext {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".png":
		return FormatPNG, nil
	default:
		return 0, fmt.Errorf("%w: unsupported image extension %q", ErrIO, ext)
	}
}

// Load reads an image file and converts it to RGB
func Load(path string) (*models.PixelBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrIO, path, err)
	}
	return models.FromImage(img), nil
}

// DecodeConfig returns the dimensions of an image file without decoding
// its pixels
func DecodeConfig(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(file))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: decode header %s: %w", ErrIO, path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Save writes buf to path in the format implied by its extension.
// quality only applies to JPEG.
func Save(path string, buf *models.PixelBuffer, quality int) error {
	format, err := FormatFromExt(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	w := bufio.NewWriter(file)
	if err := Encode(w, buf, format, quality); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Encode writes buf to w in the given format
func Encode(w io.Writer, buf *models.PixelBuffer, format Format, quality int) error {
	img := buf.ToRGBA()

	var err error
	switch format {
	case FormatJPEG:
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatPNG:
		err = png.Encode(w, img)
	default:
		err = fmt.Errorf("unknown format %v", format)
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, format, err)
	}
	return nil
}
