package moderation

import "strings"

// High-severity phrases that must read as unsafe even without the
// classifier: explicit self-harm instruction requests and hate markers.
var severePhrases = []string{
	"kill yourself",
	"kys",
	"how to kill myself",
	"how to hurt myself",
	"ways to end my life",
	"you should die",
	"i will kill you",
	"gas the",
	"white power",
	"heil hitler",
}

var profanityWords = map[string]struct{}{
	"fuck":    {},
	"fucking": {},
	"shit":    {},
	"bitch":   {},
	"asshole": {},
	"bastard": {},
	"cunt":    {},
	"dick":    {},
	"piss":    {},
	"whore":   {},
}

const profanityRatioLimit = 0.2

// heuristicVerdict is the degraded-mode substitute for the external
// classifier. Its verdicts are approximate and are never cached.
func heuristicVerdict(message string) Verdict {
	lower := strings.ToLower(message)

	for _, phrase := range severePhrases {
		if strings.Contains(lower, phrase) {
			return Verdict{
				Safe:       false,
				Reason:     "matched high-severity phrase",
				Categories: []string{"heuristic/severe"},
			}
		}
	}

	words := strings.Fields(lower)
	if len(words) > 0 {
		profane := 0
		for _, w := range words {
			if _, ok := profanityWords[strings.Trim(w, ".,!?;:'\"")]; ok {
				profane++
			}
		}
		if float64(profane)/float64(len(words)) > profanityRatioLimit {
			return Verdict{
				Safe:       false,
				Reason:     "excessive profanity",
				Categories: []string{"heuristic/profanity"},
			}
		}
	}

	return Verdict{Safe: true}
}
