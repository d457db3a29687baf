package parks

import (
	"time"

	"github.com/npsdash/backend-go/internal/models"
)

// YearlyTotals sums visits per calendar year.
func YearlyTotals(visits []models.Visit) map[int]float64 {
	totals := make(map[int]float64)
	for _, v := range visits {
		totals[v.Date.Year()] += v.Visits
	}
	return totals
}

// MonthlyAverages is the mean visit count per calendar month across years.
// Months with no rows are absent.
func MonthlyAverages(visits []models.Visit) map[time.Month]float64 {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, v := range visits {
		m := v.Date.Month()
		sums[m] += v.Visits
		counts[m]++
	}
	out := make(map[time.Month]float64, len(sums))
	for m, sum := range sums {
		out[m] = sum / float64(counts[m])
	}
	return out
}

// AnnualAverages returns, per park code, the mean yearly total over the
// years in [from, to) that have data.
func AnnualAverages(visits []models.Visit, from, to int) map[string]float64 {
	byPark := make(map[string]map[int]float64)
	for _, v := range visits {
		y := v.Date.Year()
		if y < from || y >= to {
			continue
		}
		years, ok := byPark[v.ParkCode]
		if !ok {
			years = make(map[int]float64)
			byPark[v.ParkCode] = years
		}
		years[y] += v.Visits
	}

	out := make(map[string]float64, len(byPark))
	for code, years := range byPark {
		var sum float64
		for _, total := range years {
			sum += total
		}
		out[code] = sum / float64(len(years))
	}
	return out
}

// VisitsPerAcre divides visits by area; ok is false when the area is unknown.
func VisitsPerAcre(visits, acres float64) (float64, bool) {
	if acres <= 0 {
		return 0, false
	}
	return visits / acres, true
}
