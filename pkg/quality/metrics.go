// Package quality measures how faithfully a panorama survives a projection
// round trip (equirectangular to cube faces and back).
package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cubepano/internal/models"
)

// Report holds the similarity metrics between a source image and its
// reconstruction.
type Report struct {
	// RMSE (Root Mean Square Error) is measured over all RGB channels in
	// 8-bit units. Lower values indicate a more faithful reconstruction.
	RMSE float64

	// PSNR (Peak Signal-to-Noise Ratio) in dB, derived from RMSE with a
	// peak of 255. Identical images give +Inf.
	PSNR float64

	// SSIM (Structural Similarity Index) is computed globally over the
	// luminance of both images. 1 means structurally identical.
	SSIM float64

	// MI (Mutual Information) is the Gaussian approximation of the shared
	// information between both luminance channels. Higher is better.
	MI float64

	// EntropyDiff is the absolute difference of the luminance histogram
	// entropies in bits. Lower values indicate better detail preservation.
	EntropyDiff float64

	// EdgeCorrelation is the Pearson correlation of the gradient
	// magnitudes of both images. Seam or blur artifacts lower it.
	EdgeCorrelation float64
}

// String formats the report for logs and CLI output
func (r Report) String() string {
	return fmt.Sprintf("RMSE=%.3f PSNR=%.2fdB SSIM=%.4f MI=%.4f EntropyDiff=%.4f EdgeCorr=%.4f",
		r.RMSE, r.PSNR, r.SSIM, r.MI, r.EntropyDiff, r.EdgeCorrelation)
}

// Compare computes all metrics between two images of equal size
func Compare(original, reconstructed *models.PixelBuffer) (Report, error) {
	if original.Empty() || reconstructed.Empty() {
		return Report{}, fmt.Errorf("cannot compare empty images")
	}
	if original.Width != reconstructed.Width || original.Height != reconstructed.Height {
		return Report{}, fmt.Errorf("image sizes differ: %dx%d vs %dx%d",
			original.Width, original.Height, reconstructed.Width, reconstructed.Height)
	}

	var r Report
	r.RMSE = calculateRMSE(channels(original), channels(reconstructed))
	r.PSNR = calculatePSNR(r.RMSE)

	lumOrig := luminance(original)
	lumRecon := luminance(reconstructed)
	r.SSIM = calculateSSIM(lumOrig, lumRecon)
	r.MI = calculateMutualInformation(lumOrig, lumRecon)
	r.EntropyDiff = math.Abs(calculateEntropy(lumOrig) - calculateEntropy(lumRecon))
	r.EdgeCorrelation = calculateEdgeCorrelation(
		gradientMagnitude(lumOrig, original.Width, original.Height),
		gradientMagnitude(lumRecon, reconstructed.Width, reconstructed.Height))
	return r, nil
}

// channels flattens every RGB sample to float64
func channels(b *models.PixelBuffer) []float64 {
	out := make([]float64, len(b.Pix))
	for i, v := range b.Pix {
		out[i] = float64(v)
	}
	return out
}

// luminance returns Rec. 601 luma normalized to [0,1], one value per pixel
func luminance(b *models.PixelBuffer) []float64 {
	out := make([]float64, b.Width*b.Height)
	for i := range out {
		p := b.Pix[3*i : 3*i+3]
		out[i] = (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255
	}
	return out
}

// calculateRMSE computes the root mean square error
func calculateRMSE(original, reconstructed []float64) float64 {
	n := len(original)
	if n != len(reconstructed) || n == 0 {
		return 0
	}
	return floats.Distance(original, reconstructed, 2) / math.Sqrt(float64(n))
}

func calculatePSNR(rmse float64) float64 {
	if rmse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(255/rmse)
}

// calculateSSIM computes the Structural Similarity Index
func calculateSSIM(original, reconstructed []float64) float64 {
	// Constants for SSIM calculation
	const L = 1.0 // Dynamic range
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	n := len(original)
	if n != len(reconstructed) || n < 2 {
		return 0
	}

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)
	sigmaX := stat.Variance(original, nil)
	sigmaY := stat.Variance(reconstructed, nil)
	sigmaXY := stat.Covariance(original, reconstructed, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	if den > 0 {
		return num / den
	}
	return 0
}

// calculateMutualInformation approximates MI assuming jointly Gaussian data:
// MI ≈ 0.5 * log(var(X) * var(Y) / (var(X) * var(Y) - cov(X,Y)²))
func calculateMutualInformation(original, reconstructed []float64) float64 {
	n := len(original)
	if n != len(reconstructed) || n < 2 {
		return 0
	}

	varOrig := stat.Variance(original, nil)
	varRecon := stat.Variance(reconstructed, nil)
	covar := stat.Covariance(original, reconstructed, nil)

	if varOrig > 0 && varRecon > 0 {
		determinant := varOrig*varRecon - covar*covar
		if determinant > 0 {
			return 0.5 * math.Log(varOrig*varRecon/determinant)
		}
		// Perfectly correlated
		return math.Inf(1)
	}
	return 0
}

// calculateEntropy computes the Shannon entropy of data in [0,1] over a
// fixed 256-bin histogram
func calculateEntropy(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	for _, v := range data {
		binIdx := int(v * numBins)
		if binIdx >= numBins {
			binIdx = numBins - 1
		} else if binIdx < 0 {
			binIdx = 0
		}
		hist[binIdx]++
	}

	entropy := 0.0
	for _, count := range hist {
		if count > 0 {
			p := count / float64(n)
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// gradientMagnitude returns the central-difference gradient magnitude of a
// single-channel image. Border pixels use one-sided differences.
func gradientMagnitude(data []float64, width, height int) []float64 {
	out := make([]float64, len(data))
	at := func(x, y int) float64 {
		x = min(max(x, 0), width-1)
		y = min(max(y, 0), height-1)
		return data[y*width+x]
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := at(x+1, y) - at(x-1, y)
			gy := at(x, y+1) - at(x, y-1)
			out[y*width+x] = math.Hypot(gx, gy)
		}
	}
	return out
}

// calculateEdgeCorrelation compares two edge maps. Two flat images are
// treated as perfectly preserved.
func calculateEdgeCorrelation(edgesOrig, edgesRecon []float64) float64 {
	if len(edgesOrig) != len(edgesRecon) || len(edgesOrig) < 2 {
		return 0
	}
	varOrig := stat.Variance(edgesOrig, nil)
	varRecon := stat.Variance(edgesRecon, nil)
	if varOrig == 0 && varRecon == 0 {
		if floats.Equal(edgesOrig, edgesRecon) {
			return 1
		}
		return 0
	}
	if varOrig == 0 || varRecon == 0 {
		return 0
	}
	return stat.Correlation(edgesOrig, edgesRecon, nil)
}
