package retry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Policy describes how often and how long to wait between attempts.
type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter spreads delays by +/- the given fraction (0.1 = 10%).
	Jitter float64

	// Random returns values in [0, 1). Defaults to math/rand.
	Random func() float64
}

// DefaultPolicy returns the retry policy used when connecting.
func DefaultPolicy() Policy {
	return Policy{
		Retries:      cksetup.DefaultRetryMaxAttempts,
		InitialDelay: cksetup.DefaultRetryInitialDelay,
		MaxDelay:     cksetup.DefaultRetryMaxDelay,
		Multiplier:   2,
		Jitter:       0.1,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.InitialDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		random := p.Random
		if random == nil {
			random = rand.Float64
		}
		d *= 1 + p.Jitter*(random()*2-1)
	}
	return time.Duration(d)
}
