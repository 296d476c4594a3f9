package reputation

import (
	"testing"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestResolve_ReclameAquiVerbatim(t *testing.T) {
	res := Resolve(model.ReputationSignals{
		ReclameAquiScore: ptr(8.5),
		GoogleStars:      ptr(2.0),
		Snippets:         []string{"péssimo, fora do ar"},
		TotalReviews:     ptr(1200),
	}, testNow)

	if len(res.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Score != 8.5 || e.Source != model.SourceReclameAqui {
		t.Errorf("Expected {8.5, Reclame Aqui}, got {%v, %s}", e.Score, e.Source)
	}
	if e.Status != model.StatusOtimo {
		t.Errorf("Expected Ótimo for 8.5, got %s", e.Status)
	}
	if e.TotalReviews == nil || *e.TotalReviews != 1200 {
		t.Errorf("Expected total_reviews to be carried through, got %v", e.TotalReviews)
	}
	if e.LastUpdated != "2026-10-18T12:00:00Z" {
		t.Errorf("Expected analysis time as last_updated, got %q", e.LastUpdated)
	}
}

func TestResolve_GoogleStarsExactConversion(t *testing.T) {
	for _, stars := range []float64{1, 1.5, 2, 2.7, 3, 3.5, 4, 4.5, 5} {
		res := Resolve(model.ReputationSignals{GoogleStars: ptr(stars)}, testNow)
		e, ok := res.Authoritative()
		if !ok {
			t.Fatalf("Expected an entry for %v stars", stars)
		}
		if e.Score != stars*2 {
			t.Errorf("Expected score %v for %v stars, got %v", stars*2, stars, e.Score)
		}
		if e.Source != model.SourceGooglePlaces {
			t.Errorf("Expected Google Places source, got %s", e.Source)
		}
	}
}

func TestResolve_SentimentFallback(t *testing.T) {
	res := Resolve(model.ReputationSignals{
		Snippets: []string{
			"Muitas reclamações: internet lenta e fora do ar o dia todo",
			"Atendimento péssimo, não resolve nada",
		},
	}, testNow)

	e, ok := res.Authoritative()
	if !ok {
		t.Fatal("Expected a sentiment-derived entry")
	}
	if e.Source != model.SourceInternalAI {
		t.Errorf("Expected Internal AI Analysis, got %s", e.Source)
	}
	if e.Score != 0 {
		t.Errorf("Expected all-negative text to score 0, got %v", e.Score)
	}
	if e.Status != model.StatusRuim {
		t.Errorf("Expected Ruim, got %s", e.Status)
	}
	if e.TotalReviews != nil {
		t.Error("Expected no total_reviews on an estimated score")
	}
}

func TestResolve_OutOfRangeFallsThrough(t *testing.T) {
	res := Resolve(model.ReputationSignals{
		ReclameAquiScore: ptr(11.0),
		GoogleStars:      ptr(4.0),
	}, testNow)

	e, ok := res.Authoritative()
	if !ok || e.Source != model.SourceGooglePlaces || e.Score != 8 {
		t.Errorf("Expected fallback to Google Places 8.0, got %+v", e)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", res.Warnings)
	}
}

func TestResolve_NoSignals(t *testing.T) {
	res := Resolve(model.ReputationSignals{}, testNow)
	if len(res.Entries) != 0 {
		t.Errorf("Expected no entries without evidence, got %v", res.Entries)
	}
	if _, ok := res.Authoritative(); ok {
		t.Error("Expected no authoritative entry")
	}
}

func TestResolve_ConsumidorGovIsIndependent(t *testing.T) {
	res := Resolve(model.ReputationSignals{
		ReclameAquiScore:   ptr(6.2),
		ConsumidorGovScore: ptr(7.4),
		LastUpdated:        "2026-10-01",
	}, testNow)

	if len(res.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(res.Entries))
	}
	if res.Entries[0].Source != model.SourceReclameAqui {
		t.Errorf("Expected cascade winner first, got %s", res.Entries[0].Source)
	}
	if res.Entries[1].Source != model.SourceConsumidorGov || res.Entries[1].Status != model.StatusBom {
		t.Errorf("Unexpected Consumidor.gov entry: %+v", res.Entries[1])
	}
	if res.Entries[1].LastUpdated != "2026-10-01" {
		t.Errorf("Expected supplied last_updated, got %q", res.Entries[1].LastUpdated)
	}
}

func TestStatus_Monotonic(t *testing.T) {
	rank := map[model.ReputationStatus]int{
		model.StatusRuim: 0, model.StatusRegular: 1, model.StatusBom: 2, model.StatusOtimo: 3,
	}

	prev := -1
	for score := 0.0; score <= 10.0; score += 0.1 {
		r := rank[Status(score)]
		if r < prev {
			t.Fatalf("Status not monotonic at %.1f", score)
		}
		prev = r
	}

	tests := []struct {
		score float64
		want  model.ReputationStatus
	}{
		{0, model.StatusRuim},
		{5.99, model.StatusRuim},
		{6.0, model.StatusRegular},
		{6.99, model.StatusRegular},
		{7.0, model.StatusBom},
		{7.99, model.StatusBom},
		{8.0, model.StatusOtimo},
		{10, model.StatusOtimo},
	}
	for _, tt := range tests {
		if got := Status(tt.score); got != tt.want {
			t.Errorf("Status(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSignalsFromCandidate(t *testing.T) {
	c := &model.Candidate{
		Reputation: []model.CandidateReputation{
			{Score: ptr(9.0), Source: "Google Places", TotalReviews: ptr(300), LastUpdated: "2026-09-30"},
			{Score: ptr(3.0), Source: "Internal AI Analysis"},
			{Score: ptr(5.5), Source: "consumidor.gov"},
			{Score: ptr(7.0), Source: "Procon"},
			{Source: "Reclame Aqui"},
		},
		ReputationSignals: &model.ReputationSignals{
			Snippets: []string{"bom"},
		},
	}

	signals, warnings := SignalsFromCandidate(c)

	if signals.GoogleStars == nil || *signals.GoogleStars != 4.5 {
		t.Errorf("Expected Google score 9.0 to map to 4.5 stars, got %v", signals.GoogleStars)
	}
	if signals.ReclameAquiScore != nil {
		t.Error("Expected entry without score to be ignored")
	}
	if signals.ConsumidorGovScore == nil || *signals.ConsumidorGovScore != 5.5 {
		t.Errorf("Expected Consumidor.gov 5.5, got %v", signals.ConsumidorGovScore)
	}
	if signals.TotalReviews == nil || *signals.TotalReviews != 300 {
		t.Errorf("Expected total reviews from Google entry, got %v", signals.TotalReviews)
	}
	if signals.LastUpdated != "2026-09-30" {
		t.Errorf("Expected last_updated from legacy entry, got %q", signals.LastUpdated)
	}
	if len(signals.Snippets) != 1 {
		t.Errorf("Expected explicit snippets to be kept, got %v", signals.Snippets)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning for unknown source, got %v", warnings)
	}

	res := Resolve(signals, testNow)
	e, _ := res.Authoritative()
	if e.Source != model.SourceGooglePlaces || e.Score != 9.0 {
		t.Errorf("Expected legacy Google entry to round-trip to 9.0, got %+v", e)
	}
}

func TestSignalsFromCandidate_ExplicitWins(t *testing.T) {
	c := &model.Candidate{
		Reputation: []model.CandidateReputation{
			{Score: ptr(4.0), Source: "Reclame Aqui"},
		},
		ReputationSignals: &model.ReputationSignals{ReclameAquiScore: ptr(7.7)},
	}

	signals, _ := SignalsFromCandidate(c)
	if *signals.ReclameAquiScore != 7.7 {
		t.Errorf("Expected explicit signal to win, got %v", *signals.ReclameAquiScore)
	}
}
