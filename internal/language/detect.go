package language

import "strings"

// Language tags used to pick the system prompt.
const (
	Swedish = "sv"
	English = "en"
)

// Words that rarely appear outside Swedish financial text. Two or more hits
// tip detection to Swedish; otherwise English is assumed.
var swedishKeywords = []string{
	"och", "eller", "företag", "utdelning", "omsättning", "resultat",
	"kassaflöde", "vinst", "risker", "rekommendation", "aktie", "köp", "sälj",
}

// Detect returns the language tag for a piece of text using a keyword-count
// heuristic. It is deliberately crude: the generator instructs the model to
// answer in the language of the question anyway, so detection only picks
// the prompt template.
func Detect(text string) string {
	lower := strings.ToLower(text)
	hits := 0
	for _, word := range swedishKeywords {
		if strings.Contains(lower, word) {
			hits++
		}
	}
	if hits > 1 {
		return Swedish
	}
	return English
}
