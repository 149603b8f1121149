package moderation

// Verdict is the safety classification of one message.
type Verdict struct {
	Safe       bool               `json:"safe"`
	Reason     string             `json:"reason,omitempty"`
	Categories []string           `json:"categories,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Classification is the raw result of the external classifier.
type Classification struct {
	Flagged    bool
	Categories []string
	Scores     map[string]float64
}
