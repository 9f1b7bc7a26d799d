package audio

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// rbjCoefficients builds normalized biquad coefficients from the RBJ Audio
// EQ Cookbook formulas. algo-dsp's biquad package supplies the Chain/
// Coefficients/ProcessBlock plumbing but does not export a coefficient
// generator of its own, so the math lives here.
func rbjLowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, alpha := rbjW0Alpha(freq, q, sampleRate)
	cosW0 := math.Cos(w0)
	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjHighpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, alpha := rbjW0Alpha(freq, q, sampleRate)
	cosW0 := math.Cos(w0)
	b0 := (1 + cosW0) / 2
	b1 := -(1 + cosW0)
	b2 := (1 + cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjBandpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, alpha := rbjW0Alpha(freq, q, sampleRate)
	cosW0 := math.Cos(w0)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjNotch(freq, q, sampleRate float64) biquad.Coefficients {
	w0, alpha := rbjW0Alpha(freq, q, sampleRate)
	cosW0 := math.Cos(w0)
	b0 := 1.0
	b1 := -2 * cosW0
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// rbjPeaking builds a peaking-EQ biquad at freq/q with gainDB boost/cut.
func rbjPeaking(freq, q, gainDB, sampleRate float64) biquad.Coefficients {
	a := math.Pow(10, gainDB/40)
	w0, _ := rbjW0Alpha(freq, q, sampleRate)
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)
	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a
	return normalize(b0, b1, b2, a0, a1, a2)
}

// rbjShelf builds a low (low=true) or high shelf biquad, S=1 (moderate slope).
func rbjShelf(freq, gainDB, sampleRate float64, low bool) biquad.Coefficients {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	shelfSlope := 1.0
	alpha := sinW0 / 2 * math.Sqrt((a+1/a)*(1/shelfSlope-1)+2)
	twoSqrtAAlpha := 2 * math.Sqrt(a) * alpha

	var b0, b1, b2, a0, a1, a2 float64
	if low {
		b0 = a * ((a + 1) - (a-1)*cosW0 + twoSqrtAAlpha)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW0)
		b2 = a * ((a + 1) - (a-1)*cosW0 - twoSqrtAAlpha)
		a0 = (a + 1) + (a-1)*cosW0 + twoSqrtAAlpha
		a1 = -2 * ((a - 1) + (a+1)*cosW0)
		a2 = (a + 1) + (a-1)*cosW0 - twoSqrtAAlpha
	} else {
		b0 = a * ((a + 1) + (a-1)*cosW0 + twoSqrtAAlpha)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW0)
		b2 = a * ((a + 1) + (a-1)*cosW0 - twoSqrtAAlpha)
		a0 = (a + 1) - (a-1)*cosW0 + twoSqrtAAlpha
		a1 = 2 * ((a - 1) - (a+1)*cosW0)
		a2 = (a + 1) - (a-1)*cosW0 - twoSqrtAAlpha
	}
	return normalize(b0, b1, b2, a0, a1, a2)
}

func rbjW0Alpha(freq, q, sampleRate float64) (w0, alpha float64) {
	w0 = 2 * math.Pi * freq / sampleRate
	alpha = math.Sin(w0) / (2 * q)
	return
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
