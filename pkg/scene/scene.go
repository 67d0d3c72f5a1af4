// Package scene renders the krpano <scene> element for a tiled panorama
package scene

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"text/template"

	"cubepano/pkg/gps"
	"cubepano/pkg/multires"
)

// BasePath is the tour-relative directory holding every <stem>.tiles folder
const BasePath = "panos"

// CubeURLPattern is the krpano placeholder pattern matching the tile layout,
// without the file extension: %s face letter, %l level, %0v row and %0h column
const CubeURLPattern = "%s/l%l/%0v/l%l_%s_%0v_%0h"

// CubeURL returns the tile URL pattern for tiles stored with extension ext
func CubeURL(ext string) string {
	return CubeURLPattern + "." + strings.TrimPrefix(ext, ".")
}

// attr escapes s for use inside a double-quoted XML attribute
func attr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

var sceneTemplate = template.Must(template.New("scene").Funcs(template.FuncMap{"attr": attr}).Parse(
	`<scene name="{{attr .Name}}" title="{{attr .Title}}" onstart="" thumburl="{{attr .Dir}}/thumb.jpg" lat="{{.Coords.Lat}}" lng="{{.Coords.Lng}}" alt="{{.Coords.Alt}}" heading="0.0">
	<control bouncinglimits="calc:image.cube ? true : false" />
	<view hlookat="0.0" vlookat="0.0" fovtype="MFOV" fov="120" maxpixelzoom="2.0" fovmin="70" fovmax="140" limitview="auto" />
	<preview url="{{attr .Dir}}/preview.jpg" />
	<image>
		<cube url="{{attr .Dir}}/{{attr .CubeURL}}" multires="{{.Multires}}" />
	</image>
</scene>
`))

// Scene describes one panorama entry of a tour
type Scene struct {
	Name     string
	Title    string
	Dir      string
	CubeURL  string
	Multires string
	Coords   gps.Coordinates
}

// Name derives the scene identifier from a file stem: lowercased, with
// spaces and dashes replaced by underscores
func Name(stem string) string {
	r := strings.NewReplacer(" ", "_", "-", "_")
	return "scene_" + r.Replace(strings.ToLower(stem))
}

// New describes the tiles of stem with the given ascending level sizes,
// stored as files with extension ext
func New(stem string, levels []int, coords gps.Coordinates, ext string) *Scene {
	return &Scene{
		Name:     Name(stem),
		Title:    stem,
		Dir:      BasePath + "/" + stem + ".tiles",
		CubeURL:  CubeURL(ext),
		Multires: multires.Descriptor(levels),
		Coords:   coords,
	}
}

// Render writes the XML element to w
func (s *Scene) Render(w io.Writer) error {
	return sceneTemplate.Execute(w, s)
}

// String returns the XML element
func (s *Scene) String() string {
	var b bytes.Buffer
	if err := s.Render(&b); err != nil {
		return ""
	}
	return b.String()
}
