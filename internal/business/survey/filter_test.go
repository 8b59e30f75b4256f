package survey

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

func sampleRecords() []model.SurveyRecord {
	return []model.SurveyRecord{
		{District: "沙田", Role: model.RoleGiver, AgeGroup: "31-40歲", Relation: "同事", Amount: amount(100)},
		{District: "沙田", Role: model.RoleReceiver, AgeGroup: "18歲以下", Relation: "阿媽", Amount: amount(500)},
		{District: "灣仔", Role: model.RoleGiver, AgeGroup: "31-40歲", Relation: "看更", Amount: amount(50)},
		{District: "灣仔", Role: model.RoleGiver, AgeGroup: "51歲以上", Relation: "同事", Amount: amount(200)},
	}
}

func TestFilterRecords(t *testing.T) {
	records := sampleRecords()
	tests := []struct {
		name string
		c    Criteria
		want []int
	}{
		{name: "no criteria", c: Criteria{}, want: []int{0, 1, 2, 3}},
		{name: "all sentinel", c: Criteria{Role: model.FilterAll, District: model.FilterAll}, want: []int{0, 1, 2, 3}},
		{name: "role", c: Criteria{Role: model.RoleGiver}, want: []int{0, 2, 3}},
		{name: "role and age", c: Criteria{Role: model.RoleGiver, AgeGroup: "31-40歲"}, want: []int{0, 2}},
		{name: "relation", c: Criteria{Relation: "同事"}, want: []int{0, 3}},
		{name: "district", c: Criteria{District: "灣仔"}, want: []int{2, 3}},
		{name: "no match", c: Criteria{District: "離島"}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]model.SurveyRecord, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, records[i])
			}
			assert.Equal(t, want, FilterRecords(records, tt.c))
		})
	}
}

func TestFilterRecordsReturnsFreshSlice(t *testing.T) {
	records := sampleRecords()
	out := FilterRecords(records, Criteria{})
	out[0].District = "changed"
	assert.Equal(t, "沙田", records[0].District)
}

func TestCriteriaFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("role", " giver ")
	q.Set("district", "all")
	q.Set("age_group", "23-30歲")

	c := CriteriaFromQuery(q.Get)
	assert.Equal(t, Criteria{Role: "giver", AgeGroup: "23-30歲", District: "all"}, c)
	assert.False(t, c.IsEmpty())
	assert.True(t, Criteria{District: model.FilterAll}.IsEmpty())
}
