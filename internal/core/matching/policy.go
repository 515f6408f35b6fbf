package matching

// Policy holds the tunable parameters of the matcher.
type Policy struct {
	Tolerance         Tolerance
	WindowDays        int // max calendar days between paired transactions in the AMOUNT pass
	SplitCandidateCap int // split buckets with more candidates than this are skipped and reported
}

const (
	DefaultWindowDays        = 30
	DefaultSplitCandidateCap = 8
)

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		Tolerance:         DefaultTolerance(),
		WindowDays:        DefaultWindowDays,
		SplitCandidateCap: DefaultSplitCandidateCap,
	}
}

func (p Policy) normalized() Policy {
	if p.WindowDays < 0 {
		p.WindowDays = 0
	}
	if p.SplitCandidateCap < 2 {
		p.SplitCandidateCap = DefaultSplitCandidateCap
	}
	return p
}
