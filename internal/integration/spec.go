package integration

// Integrand is the function being integrated. It must be safe to call
// concurrently from many goroutines.
type Integrand func(x float64) float64

// PiIntegrand is 4/(1+x²), whose integral over [0, 1] is π.
func PiIntegrand(x float64) float64 {
	return 4.0 / (1.0 + x*x)
}

// DefaultSteps is the number of sample points used when none is configured.
const DefaultSteps int64 = 100_000_000

// Spec describes one integration run. It is not modified during a run.
type Spec struct {
	// NumSteps is the number of equal-width subintervals of [0, 1].
	NumSteps int64
	// Integrand is evaluated at the midpoint of every subinterval.
	Integrand Integrand
}

// NewSpec returns a validated Spec. A nil integrand selects PiIntegrand.
func NewSpec(numSteps int64, f Integrand) (Spec, error) {
	if f == nil {
		f = PiIntegrand
	}
	s := Spec{NumSteps: numSteps, Integrand: f}
	return s, s.Validate()
}

// Validate reports an InvalidConfigurationError for a non-positive step count.
func (s Spec) Validate() error {
	if s.NumSteps <= 0 {
		return &InvalidConfigurationError{Field: "num_steps", Value: s.NumSteps}
	}
	return nil
}

// StepWidth returns 1/NumSteps.
func (s Spec) StepWidth() float64 {
	return 1.0 / float64(s.NumSteps)
}

// SamplePoint returns the midpoint of subinterval i. Workers evaluate the
// integrand at exactly this point.
func (s Spec) SamplePoint(i int64) float64 {
	return midpoint(i, s.StepWidth())
}

// midpoint is the sample point of subinterval i: (i+0.5)·width. Workers call
// it with the width computed once per run.
func midpoint(i int64, width float64) float64 {
	return (float64(i) + 0.5) * width
}

func (s Spec) integrand() Integrand {
	if s.Integrand == nil {
		return PiIntegrand
	}
	return s.Integrand
}
