package services

import (
	"reflect"
	"testing"

	"admissions-api/models"
)

func TestMissingStepsFeeOnly(t *testing.T) {
	cfg := models.RegistrationConfig{
		FeeEnabled:     true,
		FeeAmountPaise: 50000,
	}

	missing := MissingSteps(cfg, models.StringList{models.StepBasicInfo})
	if !reflect.DeepEqual(missing, []string{models.StepPayment}) {
		t.Fatalf("missing = %v, want [payment]", missing)
	}

	missing = MissingSteps(cfg, models.StringList{models.StepBasicInfo, models.StepPayment})
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want empty", missing)
	}
}

func TestMissingStepsAllEnabled(t *testing.T) {
	cfg := models.RegistrationConfig{
		EducationalDetailsEnabled: true,
		DocumentsEnabled:          true,
		EntranceTestEnabled:       true,
		FeeEnabled:                true,
	}

	missing := MissingSteps(cfg, nil)
	want := []string{
		models.StepBasicInfo,
		models.StepEducationalDetails,
		models.StepDocuments,
		models.StepEntranceTest,
		models.StepPayment,
	}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
}

func TestMissingStepsIgnoresDisabledSteps(t *testing.T) {
	cfg := models.RegistrationConfig{DocumentsEnabled: true}

	// Completing a disabled step never satisfies anything extra.
	missing := MissingSteps(cfg, models.StringList{models.StepBasicInfo, models.StepEntranceTest})
	if !reflect.DeepEqual(missing, []string{models.StepDocuments}) {
		t.Fatalf("missing = %v, want [documents]", missing)
	}
}

func TestMissingStepsBasicInfoAlwaysRequired(t *testing.T) {
	missing := MissingSteps(models.RegistrationConfig{}, nil)
	if !reflect.DeepEqual(missing, []string{models.StepBasicInfo}) {
		t.Fatalf("missing = %v, want [basic_info]", missing)
	}
}

func TestNextStepFollowsEnabledOrder(t *testing.T) {
	cfg := models.RegistrationConfig{
		EducationalDetailsEnabled: true,
		FeeEnabled:                true,
	}

	cases := []struct{ step, want string }{
		{models.StepBasicInfo, models.StepEducationalDetails},
		{models.StepEducationalDetails, models.StepPayment},
		{models.StepPayment, models.StepFinalSubmission},
		{models.StepFinalSubmission, models.StepFinalSubmission},
	}
	for _, tc := range cases {
		if got := NextStep(cfg, tc.step); got != tc.want {
			t.Errorf("NextStep(%s) = %s, want %s", tc.step, got, tc.want)
		}
	}
}

func TestNextStepSkipsDisabledSteps(t *testing.T) {
	cfg := models.RegistrationConfig{EntranceTestEnabled: true}

	if got := NextStep(cfg, models.StepBasicInfo); got != models.StepEntranceTest {
		t.Fatalf("NextStep(basic_info) = %s, want entrance_test", got)
	}
}

func TestDefaultRegistrationConfigRequiredSteps(t *testing.T) {
	steps := models.DefaultRegistrationConfig().RequiredSteps()
	want := []string{models.StepBasicInfo, models.StepEducationalDetails, models.StepDocuments}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
}
