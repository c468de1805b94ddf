package assets

import (
	"image"
	"image/color"
	"strings"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/draw"
)

const LOADING_SCREEN_MARGIN = 10

/**
 * @brief Composes the text of the loading event log into an image with a
 * bitmap font. Only the lines that fit are drawn, newest at the bottom.
 */
type LoadingScreen struct {
	font   *bmfont.BitmapFont
	canvas *image.RGBA
	lines  []string
}

// NewLoadingScreen loads the BMFont descriptor at fontPath, along with its
// page images, and allocates a canvas of the given size.
func NewLoadingScreen(fontPath string, width, height int) (*LoadingScreen, error) {
	font, err := bmfont.Load(fontPath)
	if err != nil {
		return nil, err
	}
	return &LoadingScreen{
		font:   font,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

func (s *LoadingScreen) Image() *image.RGBA {
	return s.canvas
}

// Lines are the lines drawn by the last Render call.
func (s *LoadingScreen) Lines() []string {
	return s.lines
}

func (s *LoadingScreen) lineHeight() int {
	return max(int(s.font.Descriptor.Common.LineHeight), 1)
}

// Render clears the canvas and draws text onto it.
func (s *LoadingScreen) Render(text string) *image.RGBA {
	bounds := s.canvas.Bounds()
	draw.Draw(s.canvas, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	fit := max((bounds.Dy()-2*LOADING_SCREEN_MARGIN)/s.lineHeight(), 0)
	if len(lines) > fit {
		lines = lines[len(lines)-fit:]
	}
	s.lines = lines

	for i, line := range lines {
		pos := image.Pt(LOADING_SCREEN_MARGIN, LOADING_SCREEN_MARGIN+i*s.lineHeight())
		s.font.DrawText(s.canvas, pos, line)
	}
	return s.canvas
}
