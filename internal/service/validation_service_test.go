package service

import (
	"testing"
	"time"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/entity"
)

func TestApplySimulatedMarksEverything(t *testing.T) {
	s := &validationService{}
	persona := &entity.Persona{Name: "Ana"}

	s.applySimulated(persona, time.Now())

	if persona.ValidationStatus != constant.ValidationStatusSimulated {
		t.Errorf("status = %s, want simulated", persona.ValidationStatus)
	}
	if persona.ValidationScore == nil || *persona.ValidationScore != simulatedScore {
		t.Errorf("score = %v, want %v", persona.ValidationScore, simulatedScore)
	}
	if persona.ValidationDetail == nil || !persona.ValidationDetail.Simulated {
		t.Errorf("detail not flagged as simulated: %+v", persona.ValidationDetail)
	}
}

func TestSummarizeCountsValidated(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	personas := []entity.Persona{
		{ValidationScore: score(0.9), ValidationStatus: constant.ValidationStatusValidated},
		{ValidationScore: score(0.5), ValidationStatus: constant.ValidationStatusPending},
		{ValidationScore: score(0.7), ValidationStatus: constant.ValidationStatusValidated},
	}

	summary := summarize(personas, false)

	if summary.NumPersonas != 3 {
		t.Errorf("NumPersonas = %d, want 3", summary.NumPersonas)
	}
	if summary.ValidatedCount != 2 {
		t.Errorf("ValidatedCount = %d, want 2", summary.ValidatedCount)
	}
	want := (0.9 + 0.5 + 0.7) / 3
	if diff := summary.OverallAverage - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallAverage = %f, want %f", summary.OverallAverage, want)
	}
	if summary.Simulated {
		t.Error("summary wrongly marked simulated")
	}
}

func TestSummarizeSimulatedNeverCountsValidated(t *testing.T) {
	s := &validationService{}
	now := time.Now()
	personas := []entity.Persona{{Name: "Ana"}, {Name: "Ben"}}
	for i := range personas {
		s.applySimulated(&personas[i], now)
	}

	summary := summarize(personas, true)
	if !summary.Simulated {
		t.Error("summary must carry the simulated flag")
	}
	if summary.ValidatedCount != 0 {
		t.Errorf("simulated run validated %d personas, want 0", summary.ValidatedCount)
	}
	if summary.OverallAverage != simulatedScore {
		t.Errorf("OverallAverage = %f, want %f", summary.OverallAverage, simulatedScore)
	}
}
