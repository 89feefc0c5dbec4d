package booking

import "sort"

// Span is a half-open interval [Start, End) in minutes since midnight.
type Span struct {
	Start int
	End   int
}

func NewSpan(start, duration int) Span {
	return Span{Start: start, End: start + duration}
}

// Overlaps is false for spans that merely touch.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Occupancy is the set of spans already held on a provider's day.
type Occupancy []Span

func NewOccupancy(spans []Span) Occupancy {
	occ := make(Occupancy, len(spans))
	copy(occ, spans)
	sort.Slice(occ, func(i, j int) bool { return occ[i].Start < occ[j].Start })
	return occ
}

func (o Occupancy) Conflicts(s Span) bool {
	for _, held := range o {
		if held.Start >= s.End {
			break
		}
		if held.Overlaps(s) {
			return true
		}
	}
	return false
}
