package types

import (
	"math/rand/v2"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Color is a hex color code such as "#3b82f6"
type Color string

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks if the color is a 6 digit hex code
func (c Color) Validate() error {
	if !colorPattern.MatchString(string(c)) {
		return goerr.New("color must be a hex code like #3b82f6", goerr.V("color", c))
	}
	return nil
}

// String returns the string representation of Color
func (c Color) String() string {
	return string(c)
}

// Palette is an ordered list of colors assigned to new select options
type Palette []Color

// DefaultPalette holds the ten hues new options are colored from
var DefaultPalette = Palette{
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#22c55e", // green
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#d946ef", // fuchsia
	"#64748b", // slate
	"#94a3b8", // gray
}

// Next returns the color at position i, wrapping around the palette.
func (p Palette) Next(i int) Color {
	if len(p) == 0 {
		return DefaultPalette.Next(i)
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// Random returns a randomly chosen color of the palette.
func (p Palette) Random() Color {
	if len(p) == 0 {
		return DefaultPalette.Random()
	}
	return p[rand.IntN(len(p))]
}

// Validate checks every color of the palette
func (p Palette) Validate() error {
	for i, c := range p {
		if err := c.Validate(); err != nil {
			return goerr.Wrap(err, "invalid palette color", goerr.V("index", i))
		}
	}
	return nil
}
