package chat

import "strings"

// EscalationLevel is the crisis score at which a turn bypasses the normal
// pipeline and returns crisis resources immediately.
const EscalationLevel = 7

const maxCrisisLevel = 10

// Assessment is the result of scanning a message for crisis indicators.
type Assessment struct {
	Detected        bool
	Level           int
	MatchedKeywords []string
}

// Escalate reports whether the assessment crosses the escalation threshold.
func (a Assessment) Escalate() bool {
	return a.Level >= EscalationLevel
}

// crisisPhrases deliberately overlap, so a single explicit statement matches
// several entries and scores high enough to escalate on its own.
var crisisPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"want to kill myself",
	"want to kill",
	"killing myself",
	"want to die",
	"wanna die",
	"wish i was dead",
	"wish i were dead",
	"end my life",
	"ending my life",
	"take my own life",
	"end it all",
	"better off dead",
	"better off without me",
	"no reason to live",
	"nothing to live for",
	"dont want to live",
	"do not want to live",
	"cant go on",
	"hurt myself",
	"hurting myself",
	"harm myself",
	"harming myself",
	"self harm",
	"cut myself",
	"cutting myself",
	"overdose",
}

var crisisNormalizer = strings.NewReplacer(
	"&#x27;", "",
	"&quot;", "",
	"'", "",
	"’", "",
	"-", " ",
)

// DetectCrisis scans a message for crisis indicators and scores it. Scoring
// is count-based: each matched phrase adds three points, capped at ten. The
// check is stateless and runs before quota and moderation so a person in
// distress is never turned away by a rate limit.
func DetectCrisis(message string) Assessment {
	normalized := crisisNormalizer.Replace(strings.ToLower(message))
	normalized = multiSpace.ReplaceAllString(normalized, " ")

	var matched []string
	for _, phrase := range crisisPhrases {
		if strings.Contains(normalized, phrase) {
			matched = append(matched, phrase)
		}
	}

	if len(matched) == 0 {
		return Assessment{}
	}

	level := len(matched) * 3
	if level > maxCrisisLevel {
		level = maxCrisisLevel
	}

	return Assessment{
		Detected:        true,
		Level:           level,
		MatchedKeywords: matched,
	}
}

// CrisisResources is returned with any turn where crisis indicators were
// found, and as the entire response when the turn escalates.
type CrisisResources struct {
	Hotline       string `json:"hotline"`
	TextLine      string `json:"textLine"`
	International string `json:"international"`
	Message       string `json:"message"`
}

// DefaultCrisisResources returns the resource block shown to users.
func DefaultCrisisResources() CrisisResources {
	return CrisisResources{
		Hotline:       "988 Suicide & Crisis Lifeline: call or text 988 (US)",
		TextLine:      "Crisis Text Line: text HOME to 741741",
		International: "Find a helpline at https://findahelpline.com",
		Message:       "If you are in immediate danger, please call your local emergency number.",
	}
}

// EscalationResponse is the fixed reply used when a turn escalates. The
// completion model is never consulted for these turns.
const EscalationResponse = "I'm really concerned about what you're sharing with me right now. " +
	"You deserve support from someone who can truly help. Please reach out to the " +
	"988 Suicide & Crisis Lifeline by calling or texting 988, or text HOME to 741741 " +
	"to reach the Crisis Text Line. If you are in immediate danger, please call your " +
	"local emergency number. You don't have to go through this alone."
