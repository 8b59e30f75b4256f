package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

func TestAnalyzeLuckiness(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{88, "lucky"},
		{168, "lucky"},
		{8.5, "lucky"},
		{100, "normal"},
		{20, "normal"},
		{0, "normal"},
		{51, "warning"},
		{99, "warning"},
		{3.5, "warning"},
		{20.5, "warning"},
	}
	for _, tt := range tests {
		got := AnalyzeLuckiness(tt.amount)
		assert.Equal(t, tt.want, got.Type, "amount %v", tt.amount)
		assert.NotEmpty(t, got.Title)
		assert.NotEmpty(t, got.Message)
	}
}

func TestPercentDifference(t *testing.T) {
	assert.Equal(t, 50, PercentDifference(150, 100))
	assert.Equal(t, -50, PercentDifference(50, 100))
	assert.Equal(t, 33, PercentDifference(200, 150))
	assert.Equal(t, 0, PercentDifference(100, 0))
}

func TestCompareWithDistrict(t *testing.T) {
	records := []model.SurveyRecord{
		{District: "東區", Amount: amount(100)},
		{District: "東區", Amount: amount(200)},
		{District: "西貢", Amount: amount(1000)},
	}

	got := CompareWithDistrict(records, "東區", 180)
	assert.Equal(t, 150, got.DistrictAverage)
	assert.Equal(t, 30.0, got.Difference)
	assert.Equal(t, 20, got.PercentDifference)
	assert.Equal(t, "lucky", got.Luck.Type)
	assert.Equal(t, 2, got.DistrictStats.Count)

	empty := CompareWithDistrict(records, "離島", 100)
	assert.Equal(t, 0, empty.DistrictAverage)
	assert.Equal(t, 0, empty.PercentDifference)
	assert.Equal(t, 100.0, empty.Difference)
}
