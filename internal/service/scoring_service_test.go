package service

import (
	"errors"
	"math"
	"testing"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
)

func TestComputeRQEMetricsIdenticalPersonas(t *testing.T) {
	vectors := [][]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	metrics, err := ComputeRQEMetrics([]string{"a", "b", "c"}, vectors)
	if err != nil {
		t.Fatalf("ComputeRQEMetrics: %v", err)
	}

	if metrics.RQEScore > 1e-9 {
		t.Errorf("identical personas should score 0, got %f", metrics.RQEScore)
	}
	if metrics.NumPersonas != 3 {
		t.Errorf("NumPersonas = %d, want 3", metrics.NumPersonas)
	}
	// Every pair sits at similarity 1, all above the redundancy cutoff.
	if len(metrics.MostSimilarPairs) != 3 {
		t.Errorf("MostSimilarPairs = %d entries, want 3", len(metrics.MostSimilarPairs))
	}
}

func TestComputeRQEMetricsOrthogonalPersonas(t *testing.T) {
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	metrics, err := ComputeRQEMetrics([]string{"a", "b", "c"}, vectors)
	if err != nil {
		t.Fatalf("ComputeRQEMetrics: %v", err)
	}

	if math.Abs(metrics.RQEScore-1) > 1e-9 {
		t.Errorf("orthogonal personas should score 1, got %f", metrics.RQEScore)
	}
	if len(metrics.MostSimilarPairs) != 0 {
		t.Errorf("no pair should clear the %v cutoff, got %d", constant.SimilarPairCutoff, len(metrics.MostSimilarPairs))
	}
}

func TestComputeRQEMetricsScoreStaysInRange(t *testing.T) {
	// Opposed vectors give negative similarity; the score must clamp at 1.
	vectors := [][]float32{{1, 0}, {-1, 0}}
	metrics, err := ComputeRQEMetrics([]string{"a", "b"}, vectors)
	if err != nil {
		t.Fatalf("ComputeRQEMetrics: %v", err)
	}
	if metrics.RQEScore < 0 || metrics.RQEScore > 1 {
		t.Errorf("RQEScore out of range: %f", metrics.RQEScore)
	}
}

func TestComputeRQEMetricsNeedsTwoPersonas(t *testing.T) {
	_, err := ComputeRQEMetrics([]string{"only"}, [][]float32{{1, 0}})
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestRenderPersonaTextStableOrder(t *testing.T) {
	persona := &entity.Persona{
		Name: "Ana",
		StructuredFields: map[string]interface{}{
			"goals":      []interface{}{"ship", "learn"},
			"name":       "Ana",
			"age":        34,
			"occupation": "bookkeeper",
		},
	}

	first := RenderPersonaText(persona)
	for i := 0; i < 10; i++ {
		if got := RenderPersonaText(persona); got != first {
			t.Fatalf("rendering is not deterministic:\n%s\nvs\n%s", first, got)
		}
	}

	want := "name: Ana\nage: 34\noccupation: bookkeeper\ngoals: ship; learn"
	if first != want {
		t.Errorf("rendered text:\n%s\nwant:\n%s", first, want)
	}
}

func TestAdvanceStatusNeverRegresses(t *testing.T) {
	cases := []struct {
		current, next, want string
	}{
		{constant.PersonaSetStatusGenerated, constant.PersonaSetStatusScored, constant.PersonaSetStatusScored},
		{constant.PersonaSetStatusValidated, constant.PersonaSetStatusScored, constant.PersonaSetStatusValidated},
		{constant.PersonaSetStatusScored, constant.PersonaSetStatusExpanded, constant.PersonaSetStatusScored},
		{constant.PersonaSetStatusGenerated, constant.PersonaSetStatusExpanded, constant.PersonaSetStatusExpanded},
	}
	for _, tc := range cases {
		if got := advanceStatus(tc.current, tc.next); got != tc.want {
			t.Errorf("advanceStatus(%s, %s) = %s, want %s", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestCosineSimilarity32(t *testing.T) {
	if got := cosineSimilarity32([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors = %f, want 1", got)
	}
	if got := cosineSimilarity32([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors = %f, want 0", got)
	}
	if got := cosineSimilarity32([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector = %f, want 0", got)
	}
}
