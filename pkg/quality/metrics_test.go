package quality

import (
	"math"
	"testing"

	"cubepano/internal/models"
)

func createGradient(width, height int) *models.PixelBuffer {
	buf := models.NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.SetRGB(x, y, uint8(x*4), uint8(y*4), uint8((x+y)*2))
		}
	}
	return buf
}

func TestCompareIdentical(t *testing.T) {
	img := createGradient(40, 30)
	r, err := Compare(img, img)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if r.RMSE != 0 {
		t.Errorf("Expected RMSE 0, got %f", r.RMSE)
	}
	if !math.IsInf(r.PSNR, 1) {
		t.Errorf("Expected infinite PSNR, got %f", r.PSNR)
	}
	if math.Abs(r.SSIM-1) > 1e-9 {
		t.Errorf("Expected SSIM 1, got %f", r.SSIM)
	}
	if r.EntropyDiff != 0 {
		t.Errorf("Expected no entropy difference, got %f", r.EntropyDiff)
	}
	if math.Abs(r.EdgeCorrelation-1) > 1e-9 {
		t.Errorf("Expected edge correlation 1, got %f", r.EdgeCorrelation)
	}
	if r.MI <= 0 {
		t.Errorf("Expected positive MI, got %f", r.MI)
	}
}

func TestCompareOffset(t *testing.T) {
	a := models.NewPixelBuffer(10, 10)
	a.Fill(100, 100, 100)
	b := models.NewPixelBuffer(10, 10)
	b.Fill(110, 110, 110)

	r, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if math.Abs(r.RMSE-10) > 1e-9 {
		t.Errorf("Expected RMSE 10, got %f", r.RMSE)
	}
	if want := 20 * math.Log10(25.5); math.Abs(r.PSNR-want) > 1e-9 {
		t.Errorf("Expected PSNR %f, got %f", want, r.PSNR)
	}
	// Both flat: no edges anywhere
	if r.EdgeCorrelation != 1 {
		t.Errorf("Expected edge correlation 1 for flat images, got %f", r.EdgeCorrelation)
	}
}

func TestCompareDegraded(t *testing.T) {
	img := createGradient(40, 30)
	noisy := createGradient(40, 30)
	for i := range noisy.Pix {
		if i%7 == 0 {
			noisy.Pix[i] = 255 - noisy.Pix[i]
		}
	}

	clean, _ := Compare(img, img)
	dirty, err := Compare(img, noisy)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if dirty.RMSE <= 0 {
		t.Error("Expected positive RMSE for a degraded image")
	}
	if dirty.SSIM >= clean.SSIM {
		t.Errorf("Degraded SSIM %f should be below %f", dirty.SSIM, clean.SSIM)
	}
	if dirty.EdgeCorrelation >= 1 {
		t.Errorf("Degraded edge correlation should be below 1, got %f", dirty.EdgeCorrelation)
	}
}

func TestCompareErrors(t *testing.T) {
	if _, err := Compare(createGradient(4, 4), createGradient(4, 5)); err == nil {
		t.Error("Expected error for size mismatch")
	}
	if _, err := Compare(models.NewPixelBuffer(0, 0), models.NewPixelBuffer(0, 0)); err == nil {
		t.Error("Expected error for empty images")
	}
}

func TestCalculateEntropy(t *testing.T) {
	if got := calculateEntropy([]float64{0.5, 0.5, 0.5}); got != 0 {
		t.Errorf("Expected 0 entropy for constant data, got %f", got)
	}
	if got := calculateEntropy([]float64{0, 1, 0, 1}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected 1 bit, got %f", got)
	}
	if got := calculateEntropy(nil); got != 0 {
		t.Errorf("Expected 0 for no data, got %f", got)
	}
}

func TestGradientMagnitude(t *testing.T) {
	// Horizontal ramp 0,1,2,3 in a 4x2 image
	data := []float64{0, 1, 2, 3, 0, 1, 2, 3}
	g := gradientMagnitude(data, 4, 2)
	want := []float64{1, 2, 2, 1, 1, 2, 2, 1}
	for i := range want {
		if math.Abs(g[i]-want[i]) > 1e-12 {
			t.Errorf("gradient[%d] = %f, expected %f", i, g[i], want[i])
		}
	}
}
