package cost

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// DateLayout is the Cost Explorer date format.
const DateLayout = "2006-01-02"

// DateRange resolves the query window. With explicit dates, end is inclusive
// and the returned end is the day after it. Otherwise the window covers the
// last days days up to and including today (UTC). The returned end is always
// exclusive.
func DateRange(days int, start, end string, now time.Time) (string, string, error) {
	if start != "" || end != "" {
		if start == "" || end == "" {
			return "", "", errors.New("start and end must be given together")
		}
		s, err := time.Parse(DateLayout, start)
		if err != nil {
			return "", "", fmt.Errorf("invalid start date %q: %w", start, err)
		}
		e, err := time.Parse(DateLayout, end)
		if err != nil {
			return "", "", fmt.Errorf("invalid end date %q: %w", end, err)
		}
		if s.After(e) {
			return "", "", fmt.Errorf("start date %s is after end date %s", start, end)
		}
		return s.Format(DateLayout), e.AddDate(0, 0, 1).Format(DateLayout), nil
	}

	if days <= 0 {
		return "", "", fmt.Errorf("days must be positive, got %d", days)
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days).Format(DateLayout), today.AddDate(0, 0, 1).Format(DateLayout), nil
}

// Analyze summarises an EC2 cost download. When daily is empty the series is
// derived by summing byType per date. Ties for max and min go to the earliest
// date.
func Analyze(daily []models.CostPoint, byType []models.InstanceTypeCost) models.CostAnalysis {
	series := daily
	if len(series) == 0 {
		series = DeriveDaily(byType)
	}
	series = sortedByDate(series)

	a := models.CostAnalysis{ByInstanceType: TotalsByInstanceType(byType)}
	if len(series) == 0 {
		return a
	}

	a.MaxCostUSD, a.MaxCostDate = series[0].CostUSD, series[0].Date
	a.MinCostUSD, a.MinCostDate = series[0].CostUSD, series[0].Date
	for _, p := range series {
		a.TotalCostUSD += p.CostUSD
		if p.CostUSD > a.MaxCostUSD {
			a.MaxCostUSD, a.MaxCostDate = p.CostUSD, p.Date
		}
		if p.CostUSD < a.MinCostUSD {
			a.MinCostUSD, a.MinCostDate = p.CostUSD, p.Date
		}
	}
	a.AverageCostUSD = a.TotalCostUSD / float64(len(series))
	return a
}

// DeriveDaily sums byType per date, ordered by date.
func DeriveDaily(byType []models.InstanceTypeCost) []models.CostPoint {
	sums := make(map[string]float64)
	for _, c := range byType {
		sums[c.Date] += c.CostUSD
	}
	points := make([]models.CostPoint, 0, len(sums))
	for date, v := range sums {
		points = append(points, models.CostPoint{Date: date, CostUSD: v})
	}
	return sortedByDate(points)
}

// TotalsByInstanceType sums byType over the whole window, most expensive
// first. Equal totals are ordered by type name.
func TotalsByInstanceType(byType []models.InstanceTypeCost) []models.InstanceTypeTotal {
	sums := make(map[string]float64)
	for _, c := range byType {
		sums[c.InstanceType] += c.CostUSD
	}
	totals := make([]models.InstanceTypeTotal, 0, len(sums))
	for itype, v := range sums {
		totals = append(totals, models.InstanceTypeTotal{InstanceType: itype, CostUSD: v})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].CostUSD != totals[j].CostUSD {
			return totals[i].CostUSD > totals[j].CostUSD
		}
		return totals[i].InstanceType < totals[j].InstanceType
	})
	return totals
}

// sortedByDate returns a date-ordered copy. YYYY-MM-DD sorts lexically.
func sortedByDate(points []models.CostPoint) []models.CostPoint {
	out := make([]models.CostPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
