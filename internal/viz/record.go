package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/san-kum/gridsearch/internal/playback"
)

// maxFrames caps a recording so a long session cannot exhaust memory.
const maxFrames = 2000

var errNoFrames = errors.New("viz: nothing recorded")

// Recorder captures canvas frames at tile resolution and encodes them as GIF.
type Recorder struct {
	frames  []*image.Paletted
	palette color.Palette
}

func NewRecorder(theme Theme) *Recorder {
	return &Recorder{palette: paletteFor(theme)}
}

func paletteFor(theme Theme) color.Palette {
	p := make(color.Palette, 3)
	for _, c := range []playback.Colour{playback.Unvisited, playback.Frontier, playback.Explored} {
		r, g, b := parseHex(theme.CellColour(c)).RGB255()
		p[c] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return p
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture appends the canvas as one frame, one tile per cell.
func (r *Recorder) Capture(c *Canvas) {
	if len(r.frames) >= maxFrames {
		return
	}
	tw, th := max(c.Tile.X, 1), max(c.Tile.Y, 1)
	img := image.NewPaletted(image.Rect(0, 0, c.Width*tw, c.Height*th), r.palette)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			idx := uint8(c.cells[y*c.Width+x])
			if idx == 0 {
				continue
			}
			for py := 0; py < th; py++ {
				for px := 0; px < tw; px++ {
					img.SetColorIndex(x*tw+px, y*th+py, idx)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save encodes the frames to path and empties the recorder. Frames captured
// across a grid resize differ in size; the animation takes the largest bounds
// and each frame is cleared to the unvisited colour before the next is drawn.
func (r *Recorder) Save(path string) (err error) {
	if len(r.frames) == 0 {
		return errNoFrames
	}
	anim := gif.GIF{LoopCount: 0, BackgroundIndex: uint8(playback.Unvisited)}
	for _, frame := range r.frames {
		b := frame.Bounds()
		anim.Config.Width = max(anim.Config.Width, b.Dx())
		anim.Config.Height = max(anim.Config.Height, b.Dy())
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	anim.Config.ColorModel = r.palette

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("viz: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("viz: close %s: %w", path, cerr)
		}
	}()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("viz: encode gif: %w", err)
	}
	r.frames = nil
	return nil
}
