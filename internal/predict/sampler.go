package predict

import (
	"sync"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/astro"
	"github.com/natalnetwork/iss-horizon/internal/ephem"
)

// DefaultSamplerWorkers bounds the concurrency of the sampling stage.
// Ephemeris evaluations are independent per instant, so sampling
// parallelizes freely; window building stays a single ordered scan.
const DefaultSamplerWorkers = 4

// sampleAt evaluates the full satellite + Sun state for one instant.
func sampleAt(obs astro.Observer, p ephem.Provider, t time.Time) (Sample, error) {
	st, err := p.Observe(obs, t)
	if err != nil {
		return Sample{}, err
	}
	sunAlt, err := p.SunAltitude(obs, t)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Time:           t,
		AltitudeDeg:    st.AltitudeDeg,
		AzimuthDeg:     st.AzimuthDeg,
		RangeKm:        st.RangeKm,
		Sunlit:         st.Sunlit,
		SunAltitudeDeg: sunAlt,
	}, nil
}

// SampleHorizon walks the horizon at a fixed step and evaluates the provider
// at each instant, returning a strictly time-ordered sample slice. The start
// instant is included; the end instant is excluded. A degenerate horizon
// (To not after From) yields zero samples and no error.
//
// Any provider error aborts the whole scan: a gap in the sample stream would
// silently corrupt boundary detection downstream.
func SampleHorizon(obs astro.Observer, p ephem.Provider, h Horizon, step time.Duration, workers int) ([]Sample, error) {
	if !h.To.After(h.From) {
		return nil, nil
	}

	var times []time.Time
	for t := h.From; t.Before(h.To); t = t.Add(step) {
		times = append(times, t)
	}

	if workers <= 1 || len(times) < 2*DefaultSamplerWorkers {
		samples := make([]Sample, 0, len(times))
		for _, t := range times {
			s, err := sampleAt(obs, p, t)
			if err != nil {
				return nil, err
			}
			samples = append(samples, s)
		}
		return samples, nil
	}

	// Parallel sampling: workers fill an indexed slice, so ordering is
	// preserved without any post-hoc sort.
	samples := make([]Sample, len(times))
	errs := make([]error, len(times))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				samples[i], errs[i] = sampleAt(obs, p, times[i])
			}
		}()
	}
	for i := range times {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return samples, nil
}
