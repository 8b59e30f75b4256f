package survey

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// ComputeStats reduces a sample of amounts into count, rounded average, median, min and max.
// NaN, infinite, negative and out-of-range (above MaxAmount) entries are dropped
// before computing; an empty valid sample yields all-zero stats. It never fails.
func ComputeStats(amounts []float64) model.DistrictStats {
	valid := make(stats.Float64Data, 0, len(amounts))
	for _, a := range amounts {
		if validAmount(a) {
			valid = append(valid, a)
		}
	}
	if len(valid) == 0 {
		return model.DistrictStats{}
	}

	// The library only errors on empty input, which is excluded above.
	mean, _ := valid.Mean()
	median, _ := valid.Median()
	lo, _ := valid.Min()
	hi, _ := valid.Max()

	return model.DistrictStats{
		Count:   len(valid),
		Average: roundHalfUp(mean),
		Median:  roundHalfUp(median),
		Min:     roundHalfUp(lo),
		Max:     roundHalfUp(hi),
	}
}

// MaxAmount is the largest amount aggregated. Every integer up to it is exact in a
// float64 and the sum of any realistic sample stays finite.
const MaxAmount = 1 << 53

func validAmount(a float64) bool {
	return !math.IsNaN(a) && a >= 0 && a <= MaxAmount
}

// roundHalfUp rounds a non-negative value to the nearest integer, ties away from zero.
func roundHalfUp(v float64) int {
	r, err := stats.Round(v, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

// AmountsOf extracts the amounts a results view aggregates: present and strictly positive.
// A zero amount is an unanswered form field upstream, not a zero-dollar lai see.
func AmountsOf(records []model.SurveyRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.HasAmount() {
			continue
		}
		if a := *r.Amount; validAmount(a) && a > 0 {
			out = append(out, a)
		}
	}
	return out
}

// StatsByDistrict aggregates records per district. Every one of the 18 districts is
// present in the result; unknown district names are kept under their raw value.
func StatsByDistrict(records []model.SurveyRecord) map[string]model.DistrictStats {
	grouped := make(map[string][]model.SurveyRecord, len(model.HKDistricts))
	for _, d := range model.HKDistricts {
		grouped[d] = nil
	}
	for _, r := range records {
		if r.District == "" {
			continue
		}
		grouped[r.District] = append(grouped[r.District], r)
	}

	out := make(map[string]model.DistrictStats, len(grouped))
	for district, rs := range grouped {
		out[district] = ComputeStats(AmountsOf(rs))
	}
	return out
}

// DistrictAverage returns the rounded average amount for one district, 0 when it has none.
func DistrictAverage(records []model.SurveyRecord, district string) int {
	return ComputeStats(AmountsOf(FilterRecords(records, Criteria{District: district}))).Average
}

// Summarize builds the dashboard summary for a record set.
func Summarize(records []model.SurveyRecord) model.Summary {
	byRole := make(map[string]int)
	byAge := make(map[string]int)
	for _, r := range records {
		if r.Role != "" {
			byRole[r.Role]++
		}
		if r.AgeGroup != "" {
			byAge[r.AgeGroup]++
		}
	}

	return model.Summary{
		TotalCount: len(records),
		Overall:    ComputeStats(AmountsOf(records)),
		ByDistrict: StatsByDistrict(records),
		ByRole:     byRole,
		ByAgeGroup: byAge,
	}
}
