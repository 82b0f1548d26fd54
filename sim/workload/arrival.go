package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// DefaultWeibullShape gives departures that ramp up early in the episode and
// thin out towards its end.
const DefaultWeibullShape = 2.0

// ArrivalSpec configures the distribution departure times are drawn from.
type ArrivalSpec struct {
	Process string  `yaml:"process"`         // "weibull" (default), "gamma" or "uniform"
	Shape   float64 `yaml:"shape,omitempty"` // shape parameter; 0 means the process default
}

// ArrivalSampler draws unitless departure-time samples. Samples are rescaled
// onto the step budget afterwards, so only their relative spread matters.
type ArrivalSampler interface {
	Sample(rng *rand.Rand) float64
}

// WeibullSampler draws from Weibull(shape, 1).
type WeibullSampler struct {
	shape float64
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	// Inverse CDF: (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return math.Pow(-math.Log(u), 1.0/s.shape)
}

// GammaSampler draws from Gamma(shape, 1).
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, 1.0)
}

// UniformSampler spreads departures evenly over the episode.
type UniformSampler struct{}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	return rng.Float64()
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Validate checks the process name and shape.
func (s ArrivalSpec) Validate() error {
	switch s.Process {
	case "", "weibull", "gamma", "uniform":
	default:
		return fmt.Errorf("unknown arrival process %q", s.Process)
	}
	if s.Shape < 0 || math.IsNaN(s.Shape) || math.IsInf(s.Shape, 0) {
		return fmt.Errorf("arrival shape must be a finite value >= 0, got %v", s.Shape)
	}
	return nil
}

// NewArrivalSampler creates an ArrivalSampler from a spec.
func NewArrivalSampler(spec ArrivalSpec) (ArrivalSampler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	shape := spec.Shape
	switch spec.Process {
	case "", "weibull":
		if shape == 0 {
			shape = DefaultWeibullShape
		}
		return &WeibullSampler{shape: shape}, nil
	case "gamma":
		if shape == 0 {
			shape = 2.0
		}
		return &GammaSampler{shape: shape}, nil
	default:
		return &UniformSampler{}, nil
	}
}

// SampleDepartureSteps draws n samples, sorts them and maps them linearly onto
// [0, maxSteps], rounding half to even. If all samples coincide every
// departure lands on step 0.
func SampleDepartureSteps(rng *rand.Rand, sampler ArrivalSampler, n, maxSteps int) []int {
	if n <= 0 {
		return []int{}
	}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = sampler.Sample(rng)
	}
	sort.Float64s(samples)

	minOld, maxOld := samples[0], samples[n-1]
	minNew, maxNew := 0.0, float64(maxSteps)
	steps := make([]int, n)
	if maxOld == minOld {
		return steps
	}
	for i, v := range samples {
		scaled := ((maxNew-minNew)/(maxOld-minOld))*(v-maxOld) + maxNew
		steps[i] = int(math.RoundToEven(scaled))
	}
	return steps
}
