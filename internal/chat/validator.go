package chat

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

const maxMessageRunes = 1000

// FilteredMarker replaces any prompt-injection pattern found in user input.
const FilteredMarker = "[FILTERED]"

var ErrEmptyMessage = errors.New("message is empty")
var ErrInvalidSessionID = errors.New("session id must be 10-50 characters of letters, digits or hyphens")

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{10,50}$`)

// injectionPatterns are checked against the raw message. Order does not
// matter; every match is replaced with FilteredMarker.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|earlier|above)\s+(instructions|prompts|rules|messages)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|earlier|above)\s+(instructions|prompts|rules|messages)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|earlier|above)\s+(instructions|prompts|rules|messages)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(unrestricted|unfiltered|uncensored|free\s+of\s+restrictions)`),
	regexp.MustCompile(`(?i)\[\s*(system|assistant|user|inst)\s*\]`),
	regexp.MustCompile(`(?i)<\s*(system|assistant|\|?im_start\|?)\s*>`),
	regexp.MustCompile(`(?i)(jailbreak|dan\s+mode|developer\s+mode\s+enabled)`),
	regexp.MustCompile(`(?i)pretend\s+(you\s+are|to\s+be)\s+(not\s+)?an?\s+(ai|assistant|language\s+model)`),
	regexp.MustCompile(`(?i)act\s+as\s+(if\s+you\s+have\s+)?no\s+(restrictions|rules|guidelines|filter)`),
	regexp.MustCompile(`(?i)reveal\s+(your\s+)?(system\s+)?prompt`),
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// htmlEscaper neutralizes markup so stored transcripts are safe to render.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// validMoods is the closed set a client may report. Anything else falls
// back to neutral.
var validMoods = map[string]bool{
	"calm": true, "happy": true, "sad": true, "anxious": true,
	"stressed": true, "angry": true, "tired": true, "hopeful": true,
	"neutral": true,
}

// SanitizeMessage normalizes a raw user message. The pipeline runs in a
// fixed order: trim, truncate, injection filtering, control-char strip,
// whitespace collapse, HTML escape. Truncation happens before filtering so
// a pattern straddling the cut cannot survive intact.
func SanitizeMessage(raw string) (string, error) {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return "", ErrEmptyMessage
	}

	if runes := []rune(msg); len(runes) > maxMessageRunes {
		msg = string(runes[:maxMessageRunes])
	}

	for i, pattern := range injectionPatterns {
		if pattern.MatchString(msg) {
			slog.Warn("injection pattern filtered",
				"pattern_index", i,
				"preview", preview(msg, 80),
			)
			msg = pattern.ReplaceAllString(msg, FilteredMarker)
		}
	}

	msg = controlChars.ReplaceAllString(msg, "")
	msg = multiSpace.ReplaceAllString(msg, " ")
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", ErrEmptyMessage
	}

	return htmlEscaper.Replace(msg), nil
}

// ValidateSessionID rejects anything outside the allowed identifier shape.
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return ErrInvalidSessionID
	}
	return nil
}

// NormalizeMood lowercases and validates a reported mood, defaulting to
// neutral.
func NormalizeMood(mood string) string {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if validMoods[mood] {
		return mood
	}
	return "neutral"
}

// IsSuspicious flags messages whose shape suggests automated or abusive
// input. Used for monitoring only; it never blocks a turn.
func IsSuspicious(msg string) bool {
	runes := []rune(msg)
	if len(runes) == 0 {
		return false
	}

	var punct, upper, letters int
	for _, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			punct++
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}

	if float64(punct)/float64(len(runes)) > 0.5 {
		return true
	}
	if letters > 10 && float64(upper)/float64(letters) > 0.8 {
		return true
	}

	words := strings.Fields(strings.ToLower(msg))
	if len(words) > 10 {
		unique := make(map[string]bool, len(words))
		for _, w := range words {
			unique[w] = true
		}
		if float64(len(unique))/float64(len(words)) < 0.25 {
			return true
		}
	}

	return false
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
