package inference

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// PreprocessImage decodes a PNG or JPEG chest X-ray, resizes it to
// ImageSize x ImageSize with bilinear interpolation, and returns the RGB
// tensor flattened row-major with each channel scaled to [0,1]. This is
// the exact input contract of the imaging model.
func PreprocessImage(r io.Reader) ([]float64, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("inference: decoding image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	tensor := make([]float64, 0, PneumoniaFeatures)
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			cr, cg, cb, _ := dst.At(x, y).RGBA()
			tensor = append(tensor,
				float64(cr>>8)/255.0,
				float64(cg>>8)/255.0,
				float64(cb>>8)/255.0,
			)
		}
	}
	return tensor, nil
}
