package predict

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/natalnetwork/iss-horizon/internal/astro"
	"github.com/natalnetwork/iss-horizon/internal/ephem"
)

var testEpoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// fakeProvider drives the pipeline with analytic functions of time, so
// expected window boundaries can be computed by hand.
type fakeProvider struct {
	alt    func(t time.Time) float64
	az     func(t time.Time) float64
	sunAlt func(t time.Time) float64
	sunlit func(t time.Time) bool
	fail   func(t time.Time) error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Observe(obs astro.Observer, t time.Time) (ephem.State, error) {
	if f.fail != nil {
		if err := f.fail(t); err != nil {
			return ephem.State{}, err
		}
	}
	st := ephem.State{AltitudeDeg: f.alt(t), RangeKm: 1000, Sunlit: true}
	if f.az != nil {
		st.AzimuthDeg = f.az(t)
	}
	if f.sunlit != nil {
		st.Sunlit = f.sunlit(t)
	}
	return st, nil
}

func (f *fakeProvider) SunAltitude(obs astro.Observer, t time.Time) (float64, error) {
	if f.sunAlt != nil {
		return f.sunAlt(t), nil
	}
	return -20, nil
}

func secs(t time.Time) float64 {
	return t.Sub(testEpoch).Seconds()
}

func newTestEngine(p ephem.Provider, c Constraints) *Engine {
	return NewEngine(p, c)
}

func TestSinglePassWindow(t *testing.T) {
	// Triangular pass peaking at 45 degrees 600 s in. Elevation crosses the
	// 12 degree floor at exactly 380 s and 820 s.
	p := &fakeProvider{
		alt: func(tt time.Time) float64 { return 45 - math.Abs(secs(tt)-600)*0.15 },
		az:  func(tt time.Time) float64 { return 10 },
	}
	c := DefaultConstraints()
	engine := newTestEngine(p, c)

	windows, err := engine.WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}

	w := windows[0]
	wantStart := testEpoch.Add(380 * time.Second)
	wantEnd := testEpoch.Add(820 * time.Second)
	if d := w.Start.Sub(wantStart); d < -2*time.Second || d > 2*time.Second {
		t.Errorf("start = %v, want %v +/- 2s", w.Start, wantStart)
	}
	if d := w.End.Sub(wantEnd); d < -2*time.Second || d > 2*time.Second {
		t.Errorf("end = %v, want %v +/- 2s", w.End, wantEnd)
	}
	if w.Duration != w.End.Sub(w.Start) {
		t.Errorf("duration %v != end-start %v", w.Duration, w.End.Sub(w.Start))
	}
	if w.PeakElevationDeg != 45 {
		t.Errorf("peak elevation = %v, want 45", w.PeakElevationDeg)
	}
	if !w.PeakTime.Equal(testEpoch.Add(600 * time.Second)) {
		t.Errorf("peak time = %v, want %v", w.PeakTime, testEpoch.Add(600*time.Second))
	}
	// Peak 45, duration ~440s, darkness margin 10: every bonus but overhead.
	if w.Stars != 5 {
		t.Errorf("stars = %d, want 5", w.Stars)
	}
	if w.StartDirection != "N" {
		t.Errorf("start direction = %q, want N", w.StartDirection)
	}
}

func TestEclipsedPassProducesNoWindows(t *testing.T) {
	p := &fakeProvider{
		alt:    func(tt time.Time) float64 { return 45 - math.Abs(secs(tt)-600)*0.15 },
		sunlit: func(time.Time) bool { return false },
	}
	windows, err := newTestEngine(p, DefaultConstraints()).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("got %d windows for an eclipsed pass, want 0", len(windows))
	}
}

func TestBrightSkyProducesNoWindows(t *testing.T) {
	p := &fakeProvider{
		alt:    func(tt time.Time) float64 { return 45 - math.Abs(secs(tt)-600)*0.15 },
		sunAlt: func(time.Time) float64 { return -5 },
	}
	windows, err := newTestEngine(p, DefaultConstraints()).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("got %d windows under a bright sky, want 0", len(windows))
	}
}

func TestTwoSeparatedPasses(t *testing.T) {
	// Passes peak at 300 s and 1500 s, each above 12 degrees for 180 s.
	p := &fakeProvider{
		alt: func(tt time.Time) float64 {
			s := secs(tt)
			if s < 900 {
				return 30 - math.Abs(s-300)*0.2
			}
			return 30 - math.Abs(s-1500)*0.2
		},
	}
	windows, err := newTestEngine(p, DefaultConstraints()).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if !windows[0].Start.Before(windows[1].Start) {
		t.Errorf("windows out of order: %v then %v", windows[0].Start, windows[1].Start)
	}
	if windows[0].End.After(windows[1].Start) {
		t.Errorf("windows overlap: first ends %v, second starts %v", windows[0].End, windows[1].Start)
	}
}

func TestGrazingWindowFiltered(t *testing.T) {
	// Visible for only ~20-30 s around 600-630 s; minimum is 60 s.
	p := &fakeProvider{
		alt: func(tt time.Time) float64 {
			s := secs(tt)
			if s >= 600 && s < 630 {
				return 13
			}
			return 0
		},
	}
	c := DefaultConstraints()
	c.MinWindowDuration = 60 * time.Second

	windows, err := newTestEngine(p, c).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("got %d windows, want 0 (grazing pass under minimum duration)", len(windows))
	}
}

func TestAlwaysVisibleClampsToHorizon(t *testing.T) {
	p := &fakeProvider{alt: func(time.Time) float64 { return 50 }}
	from := testEpoch
	to := testEpoch.Add(10 * time.Minute)

	windows, err := newTestEngine(p, DefaultConstraints()).WindowsBetween(astro.Observer{}, from, to)
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if !windows[0].Start.Equal(from) {
		t.Errorf("start = %v, want horizon start %v", windows[0].Start, from)
	}
	if !windows[0].End.Equal(to) {
		t.Errorf("end = %v, want horizon end %v", windows[0].End, to)
	}
}

func TestDegenerateHorizon(t *testing.T) {
	p := &fakeProvider{alt: func(time.Time) float64 { return 50 }}
	engine := newTestEngine(p, DefaultConstraints())

	for _, to := range []time.Time{testEpoch, testEpoch.Add(-time.Hour)} {
		windows, err := engine.WindowsBetween(astro.Observer{}, testEpoch, to)
		if err != nil {
			t.Fatalf("WindowsBetween(%v): %v", to, err)
		}
		if len(windows) != 0 {
			t.Errorf("degenerate horizon to=%v yielded %d windows", to, len(windows))
		}
	}
}

func TestProviderErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	failT := testEpoch.Add(200 * time.Second)
	p := &fakeProvider{
		alt: func(time.Time) float64 { return 50 },
		fail: func(tt time.Time) error {
			if tt.Equal(failT) {
				return boom
			}
			return nil
		},
	}

	windows, err := newTestEngine(p, DefaultConstraints()).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(10*time.Minute))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if windows != nil {
		t.Errorf("got partial windows alongside error: %v", windows)
	}
}

func TestPeakAltitudeAtLeastMinimum(t *testing.T) {
	p := &fakeProvider{
		alt: func(tt time.Time) float64 {
			s := secs(tt)
			if s < 900 {
				return 30 - math.Abs(s-300)*0.2
			}
			return 30 - math.Abs(s-1500)*0.2
		},
	}
	c := DefaultConstraints()
	windows, err := newTestEngine(p, c).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) == 0 {
		t.Fatal("expected windows")
	}
	for i, w := range windows {
		if w.PeakElevationDeg < c.MinElevationDeg {
			t.Errorf("window %d peak %.2f below minimum elevation %.2f", i, w.PeakElevationDeg, c.MinElevationDeg)
		}
	}
}

func TestRefinementIdempotent(t *testing.T) {
	p := &fakeProvider{
		alt: func(tt time.Time) float64 { return 45 - math.Abs(secs(tt)-600)*0.15 },
	}
	c := DefaultConstraints()

	// The elevation floor is crossed at exactly 380 s.
	first, err := refineRising(astro.Observer{}, p, c,
		testEpoch.Add(370*time.Second), testEpoch.Add(380*time.Second))
	if err != nil {
		t.Fatalf("refineRising: %v", err)
	}

	again, err := refineRising(astro.Observer{}, p, c, first.Add(-RefineTolerance), first)
	if err != nil {
		t.Fatalf("second refineRising: %v", err)
	}
	if d := again.Sub(first); d < -RefineTolerance || d > RefineTolerance {
		t.Errorf("re-refined boundary moved by %v, beyond tolerance %v", d, RefineTolerance)
	}
}

func TestConstraintsValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Constraints)
		want error
	}{
		{"defaults", func(*Constraints) {}, nil},
		{"zero step", func(c *Constraints) { c.SampleStep = 0 }, ErrInvalidStep},
		{"negative step", func(c *Constraints) { c.SampleStep = -time.Second }, ErrInvalidStep},
		{"elevation below range", func(c *Constraints) { c.MinElevationDeg = -1 }, ErrInvalidElevation},
		{"elevation above range", func(c *Constraints) { c.MinElevationDeg = 90.5 }, ErrInvalidElevation},
		{"twilight above horizon", func(c *Constraints) { c.TwilightDeg = 1 }, ErrInvalidTwilight},
		{"twilight at horizon", func(c *Constraints) { c.TwilightDeg = 0 }, nil},
		{"negative min window", func(c *Constraints) { c.MinWindowDuration = -time.Second }, ErrInvalidDuration},
		{"zero min window", func(c *Constraints) { c.MinWindowDuration = 0 }, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConstraints()
			tc.mod(&c)
			err := c.Validate()
			if tc.want == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInvalidConstraintsRejectedBeforeSampling(t *testing.T) {
	p := &fakeProvider{
		alt:  func(time.Time) float64 { return 50 },
		fail: func(time.Time) error { return errors.New("provider must not be called") },
	}
	c := DefaultConstraints()
	c.SampleStep = 0

	_, err := newTestEngine(p, c).WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(time.Hour))
	if !errors.Is(err, ErrInvalidStep) {
		t.Fatalf("err = %v, want ErrInvalidStep", err)
	}
}

func TestWindowsNextHoursRejectsNonPositive(t *testing.T) {
	p := &fakeProvider{alt: func(time.Time) float64 { return 0 }}
	engine := newTestEngine(p, DefaultConstraints())
	for _, h := range []int{0, -5} {
		if _, err := engine.WindowsNextHours(astro.Observer{}, h); !errors.Is(err, ErrInvalidHours) {
			t.Errorf("WindowsNextHours(%d) err = %v, want ErrInvalidHours", h, err)
		}
	}
}

func TestVisiblePredicate(t *testing.T) {
	c := DefaultConstraints()
	cases := []struct {
		s    Sample
		want bool
	}{
		{Sample{AltitudeDeg: 20, SunAltitudeDeg: -15, Sunlit: true}, true},
		{Sample{AltitudeDeg: 12, SunAltitudeDeg: -10, Sunlit: true}, true}, // both thresholds inclusive
		{Sample{AltitudeDeg: 11.9, SunAltitudeDeg: -15, Sunlit: true}, false},
		{Sample{AltitudeDeg: 20, SunAltitudeDeg: -9.9, Sunlit: true}, false},
		{Sample{AltitudeDeg: 20, SunAltitudeDeg: -15, Sunlit: false}, false},
	}
	for i, tc := range cases {
		if got := c.Visible(tc.s); got != tc.want {
			t.Errorf("case %d: Visible(%+v) = %v, want %v", i, tc.s, got, tc.want)
		}
	}
}

func TestSampleHorizonBounds(t *testing.T) {
	p := &fakeProvider{alt: func(tt time.Time) float64 { return secs(tt) }}
	h := Horizon{From: testEpoch, To: testEpoch.Add(100 * time.Second)}

	samples, err := SampleHorizon(astro.Observer{}, p, h, 10*time.Second, 1)
	if err != nil {
		t.Fatalf("SampleHorizon: %v", err)
	}
	if len(samples) != 10 {
		t.Fatalf("got %d samples, want 10 (start inclusive, end exclusive)", len(samples))
	}
	if !samples[0].Time.Equal(h.From) {
		t.Errorf("first sample at %v, want %v", samples[0].Time, h.From)
	}
	last := samples[len(samples)-1].Time
	if !last.Equal(h.To.Add(-10 * time.Second)) {
		t.Errorf("last sample at %v, want %v", last, h.To.Add(-10*time.Second))
	}
	for i := 1; i < len(samples); i++ {
		if !samples[i].Time.After(samples[i-1].Time) {
			t.Fatalf("samples not strictly ordered at index %d", i)
		}
	}
}

func TestSampleHorizonParallelMatchesSequential(t *testing.T) {
	p := &fakeProvider{
		alt: func(tt time.Time) float64 { return math.Sin(secs(tt) / 100) },
		az:  func(tt time.Time) float64 { return math.Mod(secs(tt), 360) },
	}
	h := Horizon{From: testEpoch, To: testEpoch.Add(1000 * time.Second)}

	seq, err := SampleHorizon(astro.Observer{}, p, h, 10*time.Second, 1)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := SampleHorizon(astro.Observer{}, p, h, 10*time.Second, 4)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if len(seq) != len(par) {
		t.Fatalf("length mismatch: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, seq[i], par[i])
		}
	}
}

func TestRate(t *testing.T) {
	cases := []struct {
		peak     float64
		duration time.Duration
		darkness float64
		want     int
	}{
		{10, 30 * time.Second, 0, 1},
		{10, 200 * time.Second, 10, 3},   // capped by low peak
		{45, 50 * time.Second, 20, 2},    // capped by short duration
		{25, 90 * time.Second, 0, 2},     // one elevation bonus only
		{45, 440 * time.Second, 10, 5},   // good pass, no overhead bonus needed
		{70, 300 * time.Second, 10, 5},   // everything, clamped to 5
		{20, 120 * time.Second, 8, 4},    // all thresholds inclusive
		{19.99, 300 * time.Second, 20, 3}, // just under the low-peak cap line
	}
	for i, tc := range cases {
		if got := Rate(tc.peak, tc.duration, tc.darkness); got != tc.want {
			t.Errorf("case %d: Rate(%.2f, %v, %.1f) = %d, want %d",
				i, tc.peak, tc.duration, tc.darkness, got, tc.want)
		}
	}
}

func TestRateMonotonic(t *testing.T) {
	peaks := []float64{5, 15, 20, 30, 40, 50, 65, 80}
	durations := []time.Duration{20 * time.Second, 60 * time.Second, 120 * time.Second, 400 * time.Second}
	margins := []float64{0, 4, 8, 15}

	for _, d := range durations {
		for _, m := range margins {
			prev := 0
			for _, p := range peaks {
				got := Rate(p, d, m)
				if got < prev {
					t.Fatalf("rating not monotonic in peak: Rate(%.0f, %v, %.0f) = %d after %d", p, d, m, got, prev)
				}
				prev = got
			}
		}
	}
	for _, p := range peaks {
		for _, m := range margins {
			prev := 0
			for _, d := range durations {
				got := Rate(p, d, m)
				if got < prev {
					t.Fatalf("rating not monotonic in duration: Rate(%.0f, %v, %.0f) = %d after %d", p, d, m, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestRateDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if Rate(42, 300*time.Second, 9) != Rate(42, 300*time.Second, 9) {
			t.Fatal("rating not deterministic")
		}
	}
}

func TestStarsText(t *testing.T) {
	cases := []struct {
		stars int
		want  string
	}{
		{1, "★☆☆☆☆"},
		{3, "★★★☆☆"},
		{5, "★★★★★"},
		{0, "★☆☆☆☆"},  // clamped up
		{9, "★★★★★"},  // clamped down
	}
	for _, tc := range cases {
		if got := StarsText(tc.stars); got != tc.want {
			t.Errorf("StarsText(%d) = %q, want %q", tc.stars, got, tc.want)
		}
	}
}

func TestWindowFieldsPopulated(t *testing.T) {
	p := &fakeProvider{
		alt: func(tt time.Time) float64 { return 45 - math.Abs(secs(tt)-600)*0.15 },
		az: func(tt time.Time) float64 {
			// Sweep north to south-ish over the pass.
			return math.Mod(secs(tt)/4, 360)
		},
	}
	windows, err := newTestEngine(p, DefaultConstraints()).
		WindowsBetween(astro.Observer{}, testEpoch, testEpoch.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("WindowsBetween: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}

	w := windows[0]
	for name, dir := range map[string]string{
		"start": w.StartDirection, "peak": w.PeakDirection, "end": w.EndDirection,
	} {
		if dir == "" {
			t.Errorf("%s direction empty", name)
		}
	}
	if w.Stars < 1 || w.Stars > 5 {
		t.Errorf("stars out of range: %d", w.Stars)
	}
	if w.Duration < DefaultConstraints().MinWindowDuration {
		t.Errorf("window shorter than minimum: %v", w.Duration)
	}
}
