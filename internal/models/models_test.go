package models

import (
	"errors"
	"image"
	"testing"
)

func TestParseFace(t *testing.T) {
	tests := []struct {
		in   string
		want FaceID
	}{
		{"f", Front},
		{"B", Back},
		{"right", Right},
		{" l ", Left},
		{"Up", Up},
		{"d", Down},
	}
	for _, tt := range tests {
		got, err := ParseFace(tt.in)
		if err != nil {
			t.Errorf("ParseFace(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFace(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFace("x"); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("Expected ErrInvalidFace for unknown face, got %v", err)
	}
}

func TestFaceLettersAndOrders(t *testing.T) {
	letters := ""
	for _, f := range AllFaces {
		letters += f.Letter()
	}
	if letters != "fbrlud" {
		t.Errorf("Expected processing order fbrlud, got %s", letters)
	}

	letters = ""
	for _, f := range PreviewOrder {
		letters += f.Letter()
	}
	if letters != "lfrbud" {
		t.Errorf("Expected preview order lfrbud, got %s", letters)
	}

	if FaceID(6).Valid() || FaceID(-1).Valid() {
		t.Error("Out-of-range face ids must not be valid")
	}
}

func TestTileCoordinateName(t *testing.T) {
	c := TileCoordinate{Level: 3, Row: 1, Col: 12}
	if got := c.Name(Up); got != "l3_u_01_12" {
		t.Errorf("Expected l3_u_01_12, got %s", got)
	}
}

func TestPanoramaSetMissing(t *testing.T) {
	set := PanoramaSet{
		Front: {Face: Front, Buffer: NewPixelBuffer(2, 2)},
		Up:    {Face: Up, Buffer: NewPixelBuffer(2, 2)},
	}
	missing := set.Missing()
	want := []FaceID{Back, Right, Left, Down}
	if len(missing) != len(want) {
		t.Fatalf("Expected %d missing faces, got %v", len(want), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("Missing[%d] = %v, want %v", i, missing[i], want[i])
		}
	}
}

func TestPixelBufferCropPaste(t *testing.T) {
	b := NewPixelBuffer(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			b.SetRGB(x, y, uint8(x), uint8(y), uint8(x+y))
		}
	}

	c := b.Crop(image.Rect(1, 1, 3, 3))
	if c.Width != 2 || c.Height != 2 {
		t.Fatalf("Expected 2x2 crop, got %v", c)
	}
	if r, g, bl := c.RGB(1, 0); r != 2 || g != 1 || bl != 3 {
		t.Errorf("Unexpected cropped pixel (%d,%d,%d)", r, g, bl)
	}

	// Crop past the edge is clipped to the buffer
	edge := b.Crop(image.Rect(3, 2, 8, 8))
	if edge.Width != 1 || edge.Height != 1 {
		t.Errorf("Expected 1x1 edge crop, got %v", edge)
	}

	dst := NewPixelBuffer(4, 3)
	dst.Paste(c, 1, 1)
	if !dst.Crop(image.Rect(1, 1, 3, 3)).Equal(c) {
		t.Error("Pasted region does not match source")
	}
}

func TestPixelBufferRGBARoundTrip(t *testing.T) {
	b := NewPixelBuffer(3, 2)
	b.Fill(10, 20, 30)
	b.SetRGB(2, 1, 200, 100, 50)

	rgba := b.ToRGBA()
	if rgba.Pix[3] != 0xff {
		t.Error("Expected opaque alpha")
	}
	back := FromImage(rgba)
	if !back.Equal(b) {
		t.Error("RGBA round trip changed pixels")
	}

	// Sub-images with a non-zero origin go through the generic path
	sub := rgba.SubImage(image.Rect(1, 1, 3, 2))
	cropped := FromImage(sub)
	if cropped.Width != 2 || cropped.Height != 1 {
		t.Fatalf("Expected 2x1 buffer, got %v", cropped)
	}
	if r, g, bl := cropped.RGB(1, 0); r != 200 || g != 100 || bl != 50 {
		t.Errorf("Unexpected pixel (%d,%d,%d)", r, g, bl)
	}
}
