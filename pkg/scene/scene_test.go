package scene

import (
	"strings"
	"testing"

	"cubepano/pkg/gps"
)

func TestName(t *testing.T) {
	tests := map[string]string{
		"IMG_1650":        "scene_img_1650",
		"Old Town-Square": "scene_old_town_square",
		"pano":            "scene_pano",
	}
	for stem, want := range tests {
		if got := Name(stem); got != want {
			t.Errorf("Name(%q) = %q, expected %q", stem, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	s := New("IMG 1650", []int{768, 1664, 3328, 6656}, gps.Coordinates{Lat: "52.36760000", Lng: "4.90410000", Alt: "3.00"}, "jpg")
	out := s.String()

	for _, want := range []string{
		`<scene name="scene_img_1650" title="IMG 1650"`,
		`thumburl="panos/IMG 1650.tiles/thumb.jpg"`,
		`lat="52.36760000" lng="4.90410000" alt="3.00"`,
		`<preview url="panos/IMG 1650.tiles/preview.jpg" />`,
		`<cube url="panos/IMG 1650.tiles/%s/l%l/%0v/l%l_%s_%0v_%0h.jpg" multires="512,768,1664,3328,6656" />`,
		"</scene>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWithoutGPS(t *testing.T) {
	out := New("pano", []int{640}, gps.Coordinates{}, "jpg").String()
	if !strings.Contains(out, `lat="" lng="" alt=""`) {
		t.Errorf("Expected empty GPS attributes:\n%s", out)
	}
	if !strings.Contains(out, `multires="512,640"`) {
		t.Errorf("Unexpected multires:\n%s", out)
	}
}

func TestRenderTileExtension(t *testing.T) {
	for _, ext := range []string{"png", ".tif"} {
		out := New("pano", []int{640}, gps.Coordinates{}, ext).String()
		want := `l%l_%s_%0v_%0h.` + strings.TrimPrefix(ext, ".") + `"`
		if !strings.Contains(out, want) {
			t.Errorf("Expected cube url ending %q:\n%s", want, out)
		}
	}
}

func TestRenderEscapesAttributes(t *testing.T) {
	out := New(`Tom & "Jerry"`, []int{640}, gps.Coordinates{}, "jpg").String()
	for _, want := range []string{
		`title="Tom &amp; &#34;Jerry&#34;"`,
		`thumburl="panos/Tom &amp; &#34;Jerry&#34;.tiles/thumb.jpg"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"Jerry"`) {
		t.Errorf("Unescaped quote in output:\n%s", out)
	}
}
