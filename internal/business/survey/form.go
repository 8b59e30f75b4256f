package survey

import (
	"fmt"
	"strings"

	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
)

// Step is a page of the survey form.
type Step int

const (
	StepIdentity Step = iota + 1
	StepAgeGroup
	StepDistrict
	StepRelation
	StepAmount
	StepGreeting
)

// TotalSteps is the number of pages in the survey form.
const TotalSteps = int(StepGreeting)

var stepMessages = map[Step]string{
	StepIdentity: "請選擇你的身份",
	StepAgeGroup: "請選擇年齡組別",
	StepDistrict: "請選擇地區",
	StepRelation: "請選擇派利是對象",
	StepAmount:   "請輸入有效金額",
}

// StepError reports the first form step whose answer is missing or invalid.
type StepError struct {
	Step    Step
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// CanProceed reports whether the answer for step is filled in.
// It mirrors the form's "next" button gating; the greeting page is optional.
func CanProceed(form model.SurveyForm, step Step) bool {
	switch step {
	case StepIdentity:
		return strings.TrimSpace(form.IdentityID) != ""
	case StepAgeGroup:
		return strings.TrimSpace(form.AgeGroup) != ""
	case StepDistrict:
		return strings.TrimSpace(form.District) != ""
	case StepRelation:
		return strings.TrimSpace(form.Relation) != ""
	case StepAmount:
		return form.Amount > 0 || form.CustomAmount > 0
	case StepGreeting:
		return true
	}
	return false
}

// ValidateForm checks a complete answer set before it is forwarded.
// Unknown districts and relations are accepted; role, identity and age group are not.
func ValidateForm(form model.SurveyForm) error {
	if form.Role != model.RoleGiver && form.Role != model.RoleReceiver {
		return &StepError{Step: StepIdentity, Message: "請選擇派利是或收利是"}
	}
	for step := StepIdentity; step <= StepGreeting; step++ {
		if !CanProceed(form, step) {
			return &StepError{Step: step, Message: stepMessages[step]}
		}
	}
	if _, ok := LookupIdentity(form.Role, form.IdentityID); !ok {
		return &StepError{Step: StepIdentity, Message: stepMessages[StepIdentity]}
	}
	if !model.IsAgeGroup(strings.TrimSpace(form.AgeGroup)) {
		return &StepError{Step: StepAgeGroup, Message: stepMessages[StepAgeGroup]}
	}
	if !validAmount(form.FinalAmount()) {
		return &StepError{Step: StepAmount, Message: stepMessages[StepAmount]}
	}
	return nil
}

// LookupIdentity finds an identity by id within the role's list.
func LookupIdentity(role, id string) (model.Identity, bool) {
	for _, ident := range model.IdentitiesFor(role) {
		if ident.ID == id {
			return ident, true
		}
	}
	return model.Identity{}, false
}
