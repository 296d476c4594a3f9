package reputation

import (
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/telcoscope/internal/util"
)

// Lexicon terms are stored folded (lower case, no accents)
var positiveTerms = map[string]bool{
	"bom": true, "boa": true, "otimo": true, "otima": true, "excelente": true,
	"rapido": true, "rapida": true, "estavel": true, "resolvido": true, "resolveu": true,
	"recomendo": true, "satisfeito": true, "satisfeita": true, "eficiente": true,
	"funciona": true, "elogio": true, "elogios": true, "atencioso": true, "confiavel": true,
	"good": true, "great": true, "excellent": true, "fast": true, "reliable": true,
	"recommend": true, "resolved": true, "stable": true,
}

var negativeTerms = map[string]bool{
	"ruim": true, "pessimo": true, "pessima": true, "horrivel": true, "terrivel": true,
	"reclamacao": true, "reclamacoes": true, "problema": true, "problemas": true,
	"falha": true, "falhas": true, "instavel": true, "instabilidade": true,
	"lento": true, "lenta": true, "lentidao": true, "caiu": true, "queda": true, "quedas": true,
	"demora": true, "descaso": true, "golpe": true, "indevida": true, "indevido": true,
	"bad": true, "terrible": true, "awful": true, "outage": true, "slow": true,
	"complaint": true, "complaints": true, "worst": true, "unreliable": true,
}

// Multi-word negative phrases, matched against the space-joined token stream
var negativePhrases = []string{
	"fora do ar",
	"sem sinal",
	"sem internet",
	"nao resolve",
}

var negators = map[string]bool{"nao": true, "nunca": true, "not": true, "never": true, "no": true}

// EstimateSentiment derives a 0-10 score from the tone of free-text snippets.
// score = 5 + 5*(pos-neg)/(pos+neg), rounded to one decimal; 5.0 when nothing matches.
// A positive term preceded by a negator counts as negative ("nao funciona" is one hit).
func EstimateSentiment(snippets []string) float64 {
	pos, neg := 0, 0

	for _, snippet := range snippets {
		tokens := tokenize(snippet)
		joined := " " + strings.Join(tokens, " ") + " "

		phraseHits := 0
		for _, phrase := range negativePhrases {
			phraseHits += strings.Count(joined, " "+phrase+" ")
		}
		neg += phraseHits

		for i, tok := range tokens {
			negated := i > 0 && negators[tokens[i-1]]
			switch {
			case positiveTerms[tok] && negated:
				neg++
			case positiveTerms[tok]:
				pos++
			case negativeTerms[tok]:
				neg++
			}
		}
	}

	total := pos + neg
	if total == 0 {
		return 5.0
	}

	score := 5 + 5*float64(pos-neg)/float64(total)
	return math.Round(score*10) / 10
}

func tokenize(s string) []string {
	return strings.FieldsFunc(util.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
