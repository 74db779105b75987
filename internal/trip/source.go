package trip

import "context"

// Source fetches the forecast of a single day for a free-text location query.
type Source interface {
	Name() string
	FetchDay(ctx context.Context, query string, day DayID) (DayResult, error)
}

// SourceKind tells which upstream serves a day.
type SourceKind int

const (
	// KindUnsupported days sit between the two upstream windows and are never fetched.
	KindUnsupported SourceKind = iota
	KindUpcoming
	KindFuture
)

// Upstream windows, in whole days from today. Days at offsets
// [UpcomingWindowDays, FutureHorizonDays) have no source.
const (
	UpcomingWindowDays = 9
	FutureHorizonDays  = 13
)

func (k SourceKind) String() string {
	switch k {
	case KindUpcoming:
		return "upcoming"
	case KindFuture:
		return "future"
	default:
		return "unsupported"
	}
}

// Classify maps a day offset from today to the source kind serving it.
func Classify(offset int) SourceKind {
	switch {
	case offset >= FutureHorizonDays:
		return KindFuture
	case offset < UpcomingWindowDays:
		return KindUpcoming
	default:
		return KindUnsupported
	}
}
