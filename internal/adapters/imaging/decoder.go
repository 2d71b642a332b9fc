// Package imaging decodes uploaded image bytes into the pixel statistics the
// quality analyzer consumes.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"hotel_onboarding/internal/domain"
)

type Decoder struct{}

func New() *Decoder { return &Decoder{} }

// Decode returns width/height, per-channel mean and standard deviation on the
// 0-255 scale, and a row-major grayscale buffer (ITU-R BT.601 luma).
func (d *Decoder) Decode(data []byte) (domain.ImageStats, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.ImageStats{}, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return domain.ImageStats{}, fmt.Errorf("decode image: empty bounds")
	}

	var sum, sumSq [3]float64
	gray := make([]float64, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := float64(r16 >> 8)
			g := float64(g16 >> 8)
			bl := float64(b16 >> 8)
			sum[0] += r
			sum[1] += g
			sum[2] += bl
			sumSq[0] += r * r
			sumSq[1] += g * g
			sumSq[2] += bl * bl
			gray = append(gray, 0.299*r+0.587*g+0.114*bl)
		}
	}

	n := float64(w * h)
	means := make([]float64, 3)
	stdevs := make([]float64, 3)
	for c := 0; c < 3; c++ {
		means[c] = sum[c] / n
		variance := sumSq[c]/n - means[c]*means[c]
		if variance < 0 {
			variance = 0
		}
		stdevs[c] = math.Sqrt(variance)
	}

	return domain.ImageStats{
		Width:         w,
		Height:        h,
		ChannelMeans:  means,
		ChannelStdevs: stdevs,
		Gray:          gray,
	}, nil
}
