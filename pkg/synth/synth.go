// Package synth generates synthetic report rows. Values are drawn from
// per-metric distributions so reports look plausible without a real
// dataset behind them.
package synth

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/record"
)

var (
	challengeStatuses  = []string{"Completed", "In Progress", "Not Started", "Overdue"}
	completionStatuses = []string{"Completed", "Partial", "Not Started", "Abandoned"}
	microskills        = []string{"Data Analysis", "Communication", "Critical Thinking", "Problem Solving", "Leadership"}
)

// Synthesizer produces synthetic records. It is not safe for concurrent use
// because it owns a single random source.
type Synthesizer struct {
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand sets the random source, typically a seeded one in tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Synthesizer) {
		s.rng = r
	}
}

// WithClock sets the clock used to anchor date offsets.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// New creates a Synthesizer seeded from the runtime's random source.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns count records, one field per metric in selection
// order. count is not validated: zero or negative yields an empty dataset,
// and bounding it is the caller's job.
func (s *Synthesizer) Synthesize(metrics []catalog.Metric, count int) record.Dataset {
	if count <= 0 {
		return record.Dataset{}
	}

	today := s.today()
	ds := make(record.Dataset, 0, count)
	for i := range count {
		fields := make([]record.Field, 0, len(metrics))
		for _, m := range metrics {
			fields = append(fields, record.F(m.ID, s.value(m, today)))
		}
		ds = append(ds, record.New("user-"+strconv.Itoa(i+1), fields...))
	}
	return ds
}

func (s *Synthesizer) value(m catalog.Metric, today time.Time) record.Value {
	switch m.ID {
	case catalog.MasterOID:
		return record.String("MOD-" + strconv.Itoa(1000+s.rng.IntN(9000)))
	case catalog.ContentLaunchDate:
		return s.daysAgo(today, 365)
	case catalog.Challenges:
		return record.String(s.pick(challengeStatuses))
	case catalog.CompletionStatus:
		return record.String(s.pick(completionStatuses))
	case catalog.CompletionDate:
		if s.rng.Float64() > 0.3 {
			return s.daysAgo(today, 180)
		}
		return record.Null()
	case catalog.CompletedInDays:
		return s.intN(0, 60)
	case catalog.Attempts:
		return s.intN(1, 6)
	case catalog.Score:
		return s.intN(0, 100)
	case catalog.MaxScore:
		return record.Number(100)
	case catalog.TimeSpent:
		return s.intN(0, 240)
	case catalog.MicroskillName:
		return record.String(s.pick(microskills))
	case catalog.LoginStatus:
		if s.rng.Float64() > 0.2 {
			return record.String("Active")
		}
		return record.String("Inactive")
	case catalog.LastLoginDate:
		return s.daysAgo(today, 30)
	default:
		return record.String("Value for " + m.Name)
	}
}

func (s *Synthesizer) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysAgo is a date uniformly in [today-window+1, today].
func (s *Synthesizer) daysAgo(today time.Time, window int) record.Value {
	return record.Date(today.AddDate(0, 0, -s.rng.IntN(window)))
}

// intN is a whole number uniformly in [lo, hi).
func (s *Synthesizer) intN(lo, hi int) record.Value {
	return record.Number(float64(lo + s.rng.IntN(hi-lo)))
}

func (s *Synthesizer) pick(vocab []string) string {
	return vocab[s.rng.IntN(len(vocab))]
}
