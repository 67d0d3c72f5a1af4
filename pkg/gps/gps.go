// Package gps reads the capture location of a panorama.
//
// The EXIF GPS block is read directly first. If that yields no position,
// exiftool is run once with a bounded timeout. Missing data is never an
// error: the coordinates simply stay empty.
package gps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
)

// Coordinates are decimal strings as written into the scene description.
// Latitude and longitude carry 8 decimals, altitude 2. Empty means unknown.
type Coordinates struct {
	Lat string
	Lng string
	Alt string
}

// HasPosition reports whether both latitude and longitude are known
func (c Coordinates) HasPosition() bool {
	return c.Lat != "" && c.Lng != ""
}

// Locator looks up GPS coordinates of image files
type Locator struct {
	// Enabled turns the whole lookup on or off
	Enabled bool

	// ExiftoolPath is the exiftool binary; empty disables the fallback
	ExiftoolPath string

	// Timeout bounds the exiftool run
	Timeout time.Duration

	log *zap.Logger
}

// NewLocator creates an enabled locator using exiftool from PATH
func NewLocator(log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{
		Enabled:      true,
		ExiftoolPath: "exiftool",
		Timeout:      15 * time.Second,
		log:          log,
	}
}

// Lookup returns the coordinates of the image at path
func (l *Locator) Lookup(ctx context.Context, path string) Coordinates {
	if !l.Enabled {
		return Coordinates{}
	}
	log := l.log
	if log == nil {
		log = zap.NewNop()
	}

	coords, err := FromEXIF(path)
	if err != nil {
		log.Debug("no usable EXIF GPS block", zap.String("path", path), zap.Error(err))
	}
	if coords.HasPosition() {
		return coords
	}

	if l.ExiftoolPath != "" {
		fallback, err := l.fromExiftool(ctx, path)
		if err != nil {
			log.Debug("exiftool lookup failed", zap.String("path", path), zap.Error(err))
		} else {
			if fallback.HasPosition() {
				coords.Lat, coords.Lng = fallback.Lat, fallback.Lng
			}
			if fallback.Alt != "" {
				coords.Alt = fallback.Alt
			}
		}
	}

	if !coords.HasPosition() {
		log.Warn("no GPS data found", zap.String("image", filepath.Base(path)))
	}
	return coords
}

// FromEXIF reads the GPS block of a JPEG or TIFF file
func FromEXIF(path string) (Coordinates, error) {
	f, err := os.Open(path)
	if err != nil {
		return Coordinates{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Coordinates{}, err
	}

	var c Coordinates
	if lat, lng, err := x.LatLong(); err == nil {
		c.Lat = formatDegrees(lat)
		c.Lng = formatDegrees(lng)
	}

	if tag, err := x.Get(exif.GPSAltitude); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			alt := float64(num) / float64(den)
			if ref, err := x.Get(exif.GPSAltitudeRef); err == nil {
				if v, err := ref.Int(0); err == nil && v == 1 {
					alt = -alt
				}
			}
			c.Alt = formatAltitude(alt)
		}
	}
	return c, nil
}

func (l *Locator) fromExiftool(ctx context.Context, path string) (Coordinates, error) {
	bin, err := exec.LookPath(l.ExiftoolPath)
	if err != nil {
		return Coordinates{}, err
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-j", "-n", path)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Coordinates{}, fmt.Errorf("run %s: %w", bin, err)
	}
	return ParseExiftoolJSON(stdout.Bytes())
}

// ParseExiftoolJSON extracts coordinates from the output of
// `exiftool -j -n`
func ParseExiftoolJSON(data []byte) (Coordinates, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &records); err != nil {
		return Coordinates{}, fmt.Errorf("decode exiftool output: %w", err)
	}
	if len(records) == 0 {
		return Coordinates{}, nil
	}
	rec := records[0]

	var c Coordinates
	lat, latOK := jsonFloat(rec["GPSLatitude"])
	lng, lngOK := jsonFloat(rec["GPSLongitude"])
	if latOK && lngOK {
		c.Lat = formatDegrees(lat)
		c.Lng = formatDegrees(lng)
	}
	if alt, ok := jsonFloat(rec["GPSAltitude"]); ok {
		c.Alt = formatAltitude(alt)
	}
	return c, nil
}

// jsonFloat accepts both a JSON number and a numeric string
func jsonFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func formatDegrees(v float64) string { return strconv.FormatFloat(v, 'f', 8, 64) }

func formatAltitude(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
