package printing

import "strings"

// PaperSize is a supported sheet format
type PaperSize string

const (
	PaperA4     PaperSize = "A4"
	PaperA5     PaperSize = "A5"
	PaperLetter PaperSize = "LETTER"
)

// Orientation of the printed page
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// dimensions in millimetres, portrait
var paperDimensions = map[PaperSize][2]float64{
	PaperA4:     {210, 297},
	PaperA5:     {148, 210},
	PaperLetter: {215.9, 279.4},
}

// ParsePaperSize returns the paper size named by s, or A4 when s is unknown
func ParsePaperSize(s string) PaperSize {
	p := PaperSize(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := paperDimensions[p]; ok {
		return p
	}
	return PaperA4
}

// ParseOrientation returns landscape for "landscape" in any case, portrait otherwise
func ParseOrientation(s string) Orientation {
	if strings.EqualFold(strings.TrimSpace(s), string(OrientationLandscape)) {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// Inches returns width and height in inches, the unit Chrome prints in
func (p PaperSize) Inches() (width, height float64) {
	d, ok := paperDimensions[p]
	if !ok {
		d = paperDimensions[PaperA4]
	}
	return d[0] / 25.4, d[1] / 25.4
}
