package reputation

import "testing"

func TestEstimateSentiment(t *testing.T) {
	tests := []struct {
		desc     string
		snippets []string
		want     float64
	}{
		{"no snippets", nil, 5.0},
		{"no lexicon hits", []string{"A operadora atua no Nordeste"}, 5.0},
		{"all positive", []string{"Internet rápida e estável, recomendo"}, 10.0},
		{"all negative", []string{"Serviço péssimo e lento"}, 0.0},
		{"mixed 2 pos 1 neg", []string{"Atendimento bom e eficiente, mas sinal instável"}, 6.7},
		{"negated positive", []string{"não recomendo"}, 0.0},
		{"phrase", []string{"ficou fora do ar"}, 0.0},
		{"negated verb counted once", []string{"não funciona, mas atendimento excelente"}, 5.0},
		{"english", []string{"great and reliable service", "one outage last week"}, 6.7},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := EstimateSentiment(tt.snippets); got != tt.want {
				t.Errorf("EstimateSentiment(%v) = %v, want %v", tt.snippets, got, tt.want)
			}
		})
	}
}

func TestEstimateSentiment_Deterministic(t *testing.T) {
	snippets := []string{"Reclamações sobre queda de sinal", "Suporte bom"}
	first := EstimateSentiment(snippets)
	for i := 0; i < 10; i++ {
		if got := EstimateSentiment(snippets); got != first {
			t.Fatalf("Expected deterministic result %v, got %v", first, got)
		}
	}
}
