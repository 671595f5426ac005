// Package series turns per-image observations into chart tables.
package series

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Observation is one reduced image: its acquisition time and value.
type Observation struct {
	Time  time.Time
	Value float64
}

// Row is one x position of a chart. Missing values are NaN.
type Row struct {
	Key    string
	X      float64
	Values []float64
}

// Table is a chart's data: one row per x position, one column per series.
type Table struct {
	XLabel  string
	Columns []string
	Rows    []Row
}

// Series returns the non-missing (x, y) points of a column.
func (t Table) Series(col int) (xs, ys []float64) {
	for _, r := range t.Rows {
		if col >= len(r.Values) || math.IsNaN(r.Values[col]) {
			continue
		}
		xs = append(xs, r.X)
		ys = append(ys, r.Values[col])
	}
	return xs, ys
}

type yearDay struct {
	year int
	doy  int
}

// groupByDay buckets observations by (year, day of year), dropping NaN and
// days outside [startDay, endDay].
func groupByDay(obs []Observation, startDay, endDay int) map[yearDay][]float64 {
	groups := make(map[yearDay][]float64)
	for _, o := range obs {
		if math.IsNaN(o.Value) {
			continue
		}
		t := o.Time.UTC()
		key := yearDay{t.Year(), t.YearDay()}
		if key.doy < startDay || key.doy > endDay {
			continue
		}
		groups[key] = append(groups[key], o.Value)
	}
	return groups
}

// DoyByYear builds a table keyed by day of year with one column per year.
// Observations of the same day in the same year are combined with sameDay.
func DoyByYear(obs []Observation, sameDay AggFunc, startDay, endDay int) Table {
	groups := groupByDay(obs, startDay, endDay)

	yearSet := make(map[int]bool)
	daySet := make(map[int]bool)
	for k := range groups {
		yearSet[k.year] = true
		daySet[k.doy] = true
	}
	years := sortedInts(yearSet)
	days := sortedInts(daySet)

	table := Table{XLabel: "doy", Columns: make([]string, len(years))}
	col := make(map[int]int, len(years))
	for i, y := range years {
		table.Columns[i] = strconv.Itoa(y)
		col[y] = i
	}
	for _, d := range days {
		row := Row{Key: strconv.Itoa(d), X: float64(d), Values: nanRow(len(years))}
		for _, y := range years {
			if values, ok := groups[yearDay{y, d}]; ok {
				row.Values[col[y]] = sameDay(values...)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Doy builds a single-column table keyed by day of year. Each year's
// same-day values are combined with sameDay, then the years with
// yearReducer.
func Doy(obs []Observation, sameDay, yearReducer AggFunc, startDay, endDay int, name string) Table {
	groups := groupByDay(obs, startDay, endDay)

	byDay := make(map[int][]float64)
	for k, values := range groups {
		byDay[k.doy] = append(byDay[k.doy], sameDay(values...))
	}
	daySet := make(map[int]bool, len(byDay))
	for d := range byDay {
		daySet[d] = true
	}

	table := Table{XLabel: "doy", Columns: []string{name}}
	for _, d := range sortedInts(daySet) {
		values := byDay[d]
		// Map iteration above is unordered; reducers like First need a fixed order.
		sort.Float64s(values)
		table.Rows = append(table.Rows, Row{
			Key:    strconv.Itoa(d),
			X:      float64(d),
			Values: []float64{yearReducer(values...)},
		})
	}
	return table
}

// ByTime builds a single-column, time-ordered table.
func ByTime(obs []Observation, name string) Table {
	sorted := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if !math.IsNaN(o.Value) {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	table := Table{XLabel: "system:time_start", Columns: []string{name}}
	for _, o := range sorted {
		table.Rows = append(table.Rows, Row{
			Key:    o.Time.UTC().Format(time.RFC3339),
			X:      float64(o.Time.UnixMilli()),
			Values: []float64{o.Value},
		})
	}
	return table
}

func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
