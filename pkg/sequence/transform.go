package sequence

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize returns a Transform that scales frames to the given
// dimensions with Catmull-Rom interpolation.
func Resize(width, height int) Transform {
	return func(img image.Image) (image.Image, error) {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		return dst, nil
	}
}

// Chain composes transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(img image.Image) (image.Image, error) {
		var err error
		for _, tr := range transforms {
			img, err = tr(img)
			if err != nil {
				return nil, err
			}
		}
		return img, nil
	}
}
