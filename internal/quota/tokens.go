package quota

// overheadTokens covers the system prompt and the expected response.
const overheadTokens = 150

// EstimateTokens prices a message with a fixed cost model: one token per
// four UTF-8 bytes, rounded up, plus the overhead. Deliberately coarse —
// not a tokenizer.
func EstimateTokens(message string) int {
	return (len(message)+3)/4 + overheadTokens
}
