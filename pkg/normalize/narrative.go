package normalize

import (
	"regexp"
	"strings"
)

var documentRef = regexp.MustCompile(`(?i)\b(?:nota fiscal|nf|doc)[\s.:#-]*(?:n?[º°ª.]\s*)?(\d+)`)

// ExtractNarrative splits a bank narrative into the counterparty (the text
// before the first colon) and a document reference such as "NF 1234".
func ExtractNarrative(narrative string) (counterparty, docRef string) {
	narrative = Text(narrative)
	if narrative == "" {
		return "", ""
	}

	if i := strings.Index(narrative, ":"); i > 0 {
		counterparty = strings.TrimSpace(narrative[:i])
	}

	if m := documentRef.FindStringSubmatch(narrative); m != nil {
		docRef = m[1]
	}
	return counterparty, docRef
}
