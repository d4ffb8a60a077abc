package prefilter

import "sync/atomic"

// Tracker wraps a Prefilter with effectiveness tracking.
//
// A prefilter only pays off when it rejects inputs. One whose literals occur
// in nearly every candidate input costs a scan per query and saves nothing.
// The tracker counts checks and rejections, and once the rejection rate
// drops below a threshold the prefilter is retired: IsMatch then always
// reports true and the regex engine decides alone.
//
// Algorithm:
//  1. Count checks (IsMatch calls) and rejects (false results)
//  2. After the warmup period, every CheckInterval checks, compute the ratio
//  3. If rejects/checks < MinRejectRate, disable the prefilter
//  4. Once disabled, never re-enable
//
// Retiring a prefilter never changes match results, only the work done to
// reach them. Counters are atomic: a Tracker is shared by concurrent
// queries.
//
// Example usage:
//
//	pf, _ := prefilter.NewBuilder(required).Build()
//	tracked := prefilter.NewTracker(pf)
//	if !tracked.IsMatch(input) {
//	    return false // cannot match
//	}
//	return re.MatchString(string(input))
type Tracker struct {
	inner Prefilter

	// Statistics
	checks  atomic.Uint64
	rejects atomic.Uint64

	// Configuration
	checkInterval uint64
	minRejectRate float64
	warmupPeriod  uint64

	// State
	retired atomic.Bool
}

// trackerConfig holds configuration for the effectiveness tracker.
type trackerConfig struct {
	// CheckInterval is how often to check effectiveness (in checks).
	// Default: 64
	CheckInterval uint64

	// MinRejectRate is the minimum acceptable ratio of rejects/checks.
	// If the rate drops below this, the prefilter is disabled.
	// Default: 0.05 (5%)
	MinRejectRate float64

	// WarmupPeriod is the minimum number of checks before evaluating.
	// Default: 256
	WarmupPeriod uint64
}

func defaultTrackerConfig() trackerConfig {
	return trackerConfig{
		CheckInterval: 64,
		MinRejectRate: 0.05,
		WarmupPeriod:  256,
	}
}

// NewTracker creates a new tracker for the given prefilter: after 256
// checks, it is retired as soon as it rejects less than 5% of its inputs,
// evaluated every 64 checks.
//
// Returns nil if the inner prefilter is nil.
func NewTracker(inner Prefilter) *Tracker {
	return newTrackerWithConfig(inner, defaultTrackerConfig())
}

func newTrackerWithConfig(inner Prefilter, config trackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 1
	}

	return &Tracker{
		inner:         inner,
		checkInterval: config.CheckInterval,
		minRejectRate: config.MinRejectRate,
		warmupPeriod:  config.WarmupPeriod,
	}
}

// IsMatch implements Prefilter. Once the prefilter is retired it returns
// true without scanning.
func (t *Tracker) IsMatch(haystack []byte) bool {
	if t.retired.Load() {
		return true
	}

	ok := t.inner.IsMatch(haystack)
	if !ok {
		t.rejects.Add(1)
	}
	if n := t.checks.Add(1); n >= t.warmupPeriod && n%t.checkInterval == 0 {
		t.checkEffectiveness(n)
	}
	return ok
}

// Len implements Prefilter.
func (t *Tracker) Len() int {
	return t.inner.Len()
}

// String implements Prefilter.
func (t *Tracker) String() string {
	if t.retired.Load() {
		return "retired(" + t.inner.String() + ")"
	}
	return t.inner.String()
}

// IsActive returns true if the prefilter is still being used. RegexTrie
// reports retired prefilters in Stats.NumRetired.
func (t *Tracker) IsActive() bool {
	return !t.retired.Load()
}

func (t *Tracker) checkEffectiveness(checks uint64) {
	rate := float64(t.rejects.Load()) / float64(checks)
	if rate < t.minRejectRate {
		t.retired.Store(true)
	}
}

