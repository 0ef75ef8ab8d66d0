package services

import (
	"admissions-api/models"
)

// MissingSteps returns the wizard steps still required before final
// submission, in wizard order. Submit succeeds iff the result is empty.
func MissingSteps(cfg models.RegistrationConfig, completed models.StringList) []string {
	missing := []string{}
	for _, step := range cfg.RequiredSteps() {
		if !completed.Contains(step) {
			missing = append(missing, step)
		}
	}
	return missing
}

// NextStep returns the nominal wizard step after the given one, taking
// the university's enabled steps into account.
func NextStep(cfg models.RegistrationConfig, step string) string {
	order := append(cfg.RequiredSteps(), models.StepFinalSubmission)
	for i, s := range order {
		if s == step && i+1 < len(order) {
			return order[i+1]
		}
	}
	return models.StepFinalSubmission
}
