package metadata

import (
	"sort"
	"time"
)

// Timeline indexes published entries by year, month and day of first publication.
// Only days that hold at least one entry exist in the maps.
type Timeline map[int]map[time.Month]map[int][]string

// Add files id under the calendar day of t.
func (tl Timeline) Add(t time.Time, id string) {
	months, ok := tl[t.Year()]
	if !ok {
		months = map[time.Month]map[int][]string{}
		tl[t.Year()] = months
	}
	days, ok := months[t.Month()]
	if !ok {
		days = map[int][]string{}
		months[t.Month()] = days
	}
	days[t.Day()] = append(days[t.Day()], id)
}

// Years returns the years holding entries, ascending.
func (tl Timeline) Years() []int {
	years := make([]int, 0, len(tl))
	for y := range tl {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Year returns every id published in the given year, in calendar order.
func (tl Timeline) Year(year int) []string {
	var ids []string
	for m := time.January; m <= time.December; m++ {
		ids = append(ids, tl.Month(year, m)...)
	}
	return ids
}

// Month returns every id published in the given month, in calendar order.
func (tl Timeline) Month(year int, month time.Month) []string {
	days := tl[year][month]
	keys := make([]int, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	var ids []string
	for _, d := range keys {
		ids = append(ids, days[d]...)
	}
	return ids
}

// Day returns the ids published on one day.
func (tl Timeline) Day(year int, month time.Month, day int) []string {
	return tl[year][month][day]
}

// sortDays orders the ids of every day so the index does not depend on input order.
func (tl Timeline) sortDays() {
	for _, months := range tl {
		for _, days := range months {
			for _, ids := range days {
				sort.Strings(ids)
			}
		}
	}
}
