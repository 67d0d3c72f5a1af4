package gps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseExiftoolJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Coordinates
	}{
		{
			name: "numeric",
			in:   `[{"SourceFile":"a.jpg","GPSLatitude":52.3676,"GPSLongitude":-4.9041,"GPSAltitude":12.347}]`,
			want: Coordinates{Lat: "52.36760000", Lng: "-4.90410000", Alt: "12.35"},
		},
		{
			name: "string values",
			in:   `[{"GPSLatitude":"-33.8688","GPSLongitude":"151.2093"}]`,
			want: Coordinates{Lat: "-33.86880000", Lng: "151.20930000"},
		},
		{
			name: "altitude only",
			in:   `[{"GPSAltitude":-3}]`,
			want: Coordinates{Alt: "-3.00"},
		},
		{
			name: "latitude without longitude",
			in:   `[{"GPSLatitude":10}]`,
			want: Coordinates{},
		},
		{
			name: "empty array",
			in:   `[]`,
			want: Coordinates{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExiftoolJSON([]byte(tt.in))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if _, err := ParseExiftoolJSON([]byte("Error: file not found")); err == nil {
		t.Error("Expected error for non-JSON output")
	}
}

func TestLookupDisabled(t *testing.T) {
	l := NewLocator(nil)
	l.Enabled = false
	if got := l.Lookup(context.Background(), "does-not-matter.jpg"); got != (Coordinates{}) {
		t.Errorf("Expected empty coordinates, got %+v", got)
	}
}

func TestLookupDegradesGracefully(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pano.jpg")
	if err := os.WriteFile(path, []byte("no exif here"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(nil)
	l.ExiftoolPath = filepath.Join(t.TempDir(), "no-such-exiftool")

	got := l.Lookup(context.Background(), path)
	if got.HasPosition() || got.Alt != "" {
		t.Errorf("Expected empty coordinates, got %+v", got)
	}
}

func TestFromEXIFMissingFile(t *testing.T) {
	if _, err := FromEXIF(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormatting(t *testing.T) {
	if got := formatDegrees(1.0 / 3); got != "0.33333333" {
		t.Errorf("Unexpected degrees %q", got)
	}
	if got := formatAltitude(99.999); got != "100.00" {
		t.Errorf("Unexpected altitude %q", got)
	}
}
