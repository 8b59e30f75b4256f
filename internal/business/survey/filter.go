package survey

import (
	"strings"

	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// Criteria narrows a record set by exact field match. An empty value or
// model.FilterAll disables the check for that field.
type Criteria struct {
	Role     string
	AgeGroup string
	Relation string
	District string
}

// QueryGetter is satisfied by url.Values and gin's query accessors.
type QueryGetter func(key string) string

// CriteriaFromQuery reads role, age_group, relation and district query parameters.
func CriteriaFromQuery(get QueryGetter) Criteria {
	return Criteria{
		Role:     strings.TrimSpace(get("role")),
		AgeGroup: strings.TrimSpace(get("age_group")),
		Relation: strings.TrimSpace(get("relation")),
		District: strings.TrimSpace(get("district")),
	}
}

// IsEmpty reports whether no criterion is active.
func (c Criteria) IsEmpty() bool {
	return !active(c.Role) && !active(c.AgeGroup) && !active(c.Relation) && !active(c.District)
}

// Matches reports whether r satisfies every active criterion.
func (c Criteria) Matches(r model.SurveyRecord) bool {
	if active(c.Role) && r.Role != c.Role {
		return false
	}
	if active(c.AgeGroup) && r.AgeGroup != c.AgeGroup {
		return false
	}
	if active(c.Relation) && r.Relation != c.Relation {
		return false
	}
	if active(c.District) && r.District != c.District {
		return false
	}
	return true
}

// FilterRecords returns the records matching c, in input order.
func FilterRecords(records []model.SurveyRecord, c Criteria) []model.SurveyRecord {
	out := make([]model.SurveyRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func active(v string) bool {
	return v != "" && v != model.FilterAll
}
