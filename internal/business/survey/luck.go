package survey

import (
	"math"
	"strconv"

	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// AnalyzeLuckiness classifies an amount: an 8 anywhere is lucky, odd amounts are a
// gentle warning, everything else is a plain good omen.
func AnalyzeLuckiness(amount float64) model.LuckAnalysis {
	digits := strconv.FormatFloat(amount, 'f', -1, 64)

	for _, c := range digits {
		if c == '8' {
			return model.LuckAnalysis{
				Type:    "lucky",
				Icon:    "🎉",
				Title:   "發發發！",
				Message: "好意頭！金額有「8」字，寓意發財！",
			}
		}
	}
	if math.Mod(amount, 2) != 0 {
		return model.LuckAnalysis{
			Type:    "warning",
			Icon:    "⚠️",
			Title:   "大吉利是！",
			Message: "提提你：單數利是喺傳統上較少見，雙數會更好！",
		}
	}
	return model.LuckAnalysis{
		Type:    "normal",
		Icon:    "✨",
		Title:   "好意頭！",
		Message: "雙數利是，寓意好事成雙！",
	}
}

// PercentDifference is the rounded percentage by which value differs from baseline.
// A zero baseline yields 0.
func PercentDifference(value, baseline float64) int {
	if baseline == 0 {
		return 0
	}
	return int(math.Round((value - baseline) / baseline * 100))
}

// CompareWithDistrict builds the result view for an amount against its district's records.
func CompareWithDistrict(records []model.SurveyRecord, district string, amount float64) model.ResultComparison {
	ds := ComputeStats(AmountsOf(FilterRecords(records, Criteria{District: district})))
	avg := float64(ds.Average)
	return model.ResultComparison{
		Amount:            amount,
		District:          district,
		DistrictAverage:   ds.Average,
		Difference:        amount - avg,
		PercentDifference: PercentDifference(amount, avg),
		Luck:              AnalyzeLuckiness(amount),
		DistrictStats:     ds,
	}
}
