// Package frame defines the in-memory frame batch exchanged with the
// processing pipeline.
package frame

import (
	"fmt"
	"image"
	"image/draw"
)

// Batch is an ordered sequence of frames in [time, channel, height,
// width] layout. Pixels are float32 in [0, 1]. Channels is 1
// (grayscale) or 3 (RGB); a grayscale batch is broadcast to 3 channels
// before video encoding.
type Batch struct {
	Frames   int
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewBatch allocates a zeroed batch with the given shape.
func NewBatch(frames, channels, height, width int) Batch {
	return Batch{
		Frames:   frames,
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, frames*channels*height*width),
	}
}

// Validate checks the batch shape against its backing slice.
func (b Batch) Validate() error {
	if b.Channels != 1 && b.Channels != 3 {
		return fmt.Errorf("frame: channel count must be 1 or 3, got %d", b.Channels)
	}
	if want := b.Frames * b.Channels * b.Height * b.Width; len(b.Data) != want {
		return fmt.Errorf("frame: data length %d does not match shape %dx%dx%dx%d",
			len(b.Data), b.Frames, b.Channels, b.Height, b.Width)
	}
	return nil
}

func (b Batch) index(t, c, y, x int) int {
	return ((t*b.Channels+c)*b.Height+y)*b.Width + x
}

// At returns the pixel at [t, c, y, x].
func (b Batch) At(t, c, y, x int) float32 {
	return b.Data[b.index(t, c, y, x)]
}

// Set stores the pixel at [t, c, y, x].
func (b Batch) Set(t, c, y, x int, v float32) {
	b.Data[b.index(t, c, y, x)] = v
}

// BroadcastGray returns a 3-channel copy of a grayscale batch. A batch
// that already has 3 channels is returned unchanged.
func (b Batch) BroadcastGray() Batch {
	if b.Channels != 1 {
		return b
	}
	out := NewBatch(b.Frames, 3, b.Height, b.Width)
	for t := 0; t < b.Frames; t++ {
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				v := b.At(t, 0, y, x)
				out.Set(t, 0, y, x, v)
				out.Set(t, 1, y, x, v)
				out.Set(t, 2, y, x, v)
			}
		}
	}
	return out
}

// RGB24 converts frame t to 8-bit interleaved RGB in row-major
// (height, width, channel) order, clamping values to [0, 1]. A
// grayscale frame is broadcast across all three channels.
func (b Batch) RGB24(t int) []byte {
	out := make([]byte, b.Height*b.Width*3)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := (y*b.Width + x) * 3
			if b.Channels == 1 {
				v := quantize(b.At(t, 0, y, x))
				out[i], out[i+1], out[i+2] = v, v, v
				continue
			}
			out[i] = quantize(b.At(t, 0, y, x))
			out[i+1] = quantize(b.At(t, 1, y, x))
			out[i+2] = quantize(b.At(t, 2, y, x))
		}
	}
	return out
}

// RGBA converts frame t to a standard image for still-image encoding.
func (b Batch) RGBA(t int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	rgb := b.RGB24(t)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			src := (y*b.Width + x) * 3
			dst := y*img.Stride + x*4
			img.Pix[dst] = rgb[src]
			img.Pix[dst+1] = rgb[src+1]
			img.Pix[dst+2] = rgb[src+2]
			img.Pix[dst+3] = 255
		}
	}
	return img
}

// FromImages packs decoded frames into a 3-channel batch, converting
// 8-bit pixels back to float [0, 1]. All images must share dimensions.
func FromImages(imgs []image.Image) (Batch, error) {
	if len(imgs) == 0 {
		return Batch{}, fmt.Errorf("frame: no images to pack")
	}
	bounds := imgs[0].Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := NewBatch(len(imgs), 3, h, w)
	for t, img := range imgs {
		ib := img.Bounds()
		if ib.Dx() != w || ib.Dy() != h {
			return Batch{}, fmt.Errorf("frame: image %d is %dx%d, want %dx%d", t, ib.Dx(), ib.Dy(), w, h)
		}
		rgba, ok := img.(*image.RGBA)
		if !ok {
			rgba = image.NewRGBA(image.Rect(0, 0, w, h))
			draw.Draw(rgba, rgba.Bounds(), img, ib.Min, draw.Src)
		}
		// PixOffset keeps sub-image views (non-zero bounds origin)
		// reading the right pixels.
		min := rgba.Bounds().Min
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := rgba.PixOffset(min.X+x, min.Y+y)
				b.Set(t, 0, y, x, float32(rgba.Pix[i])/255)
				b.Set(t, 1, y, x, float32(rgba.Pix[i+1])/255)
				b.Set(t, 2, y, x, float32(rgba.Pix[i+2])/255)
			}
		}
	}
	return b, nil
}

// quantize clamps to [0, 1] and scales to 8 bits.
func quantize(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
