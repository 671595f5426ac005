package ee

import "time"

// Filter selects collection elements.
type Filter struct{ node *Node }

func (f Filter) Node() *Node { return f.node }

// DateRange is a half-open [Start, End) interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day returns the UTC midnight of a calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Node encodes the range as DateRange(Date(start), Date(end)).
func (r DateRange) Node() *Node {
	return Invoke("DateRange", map[string]Value{
		"start": DateValue(r.Start),
		"end":   DateValue(r.End),
	})
}

// DateValue is a server-side Date at t.
func DateValue(t time.Time) *Node {
	return Invoke("Date", map[string]Value{"value": Constant(t.UnixMilli())})
}

// Date matches elements whose system:time_start is inside r.
func Date(r DateRange) Filter {
	return Filter{Invoke("Filter.dateRangeContains", map[string]Value{
		"leftValue":  r,
		"rightField": Constant("system:time_start"),
	})}
}

// Or matches elements that match any of filters.
func Or(filters ...Filter) Filter {
	vals := make([]Value, len(filters))
	for i, f := range filters {
		vals[i] = f
	}
	return Filter{Invoke("Filter.or", map[string]Value{"filters": Array(vals...)})}
}

// Not inverts f.
func (f Filter) Not() Filter {
	return Filter{Invoke("Filter.not", map[string]Value{"filter": f})}
}

// LessThan matches elements whose property is below value.
func LessThan(property string, value any) Filter {
	return Filter{Invoke("Filter.lessThan", map[string]Value{
		"leftField":  Constant(property),
		"rightValue": Constant(value),
	})}
}

// CalendarRange matches elements whose date field (year, month, ...) is in
// [start, end].
func CalendarRange(start, end int, field string) Filter {
	return Filter{Invoke("Filter.calendarRange", map[string]Value{
		"start": Constant(start),
		"end":   Constant(end),
		"field": Constant(field),
	})}
}

// ListContains matches elements whose list property contains value.
func ListContains(property string, value any) Filter {
	return Filter{Invoke("Filter.listContains", map[string]Value{
		"leftField":  Constant(property),
		"rightValue": Constant(value),
	})}
}

// Bounds matches elements intersecting geom.
func Bounds(geom Value) Filter {
	return Filter{Invoke("Filter.intersects", map[string]Value{
		"leftField":  Constant(".all"),
		"rightValue": geom,
	})}
}

// Reducer aggregates values.
type Reducer struct{ node *Node }

func (r Reducer) Node() *Node { return r.node }

func MeanReducer() Reducer  { return Reducer{Invoke("Reducer.mean", nil)} }
func SumReducer() Reducer   { return Reducer{Invoke("Reducer.sum", nil)} }
func FirstReducer() Reducer { return Reducer{Invoke("Reducer.first", nil)} }
