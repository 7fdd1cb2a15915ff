package aiprovider

import (
	"github.com/pkoukk/tiktoken-go"
)

// CountTokens estimates token count for text under the given model's
// encoding, falling back to the cl100k_base encoding used by the GPT-4
// family when the model isn't recognized by tiktoken.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// No encoder available; approximate with the byte length of the
			// text divided by four.
			return len(text) / 4
		}
	}
	return len(enc.Encode(text, nil, nil))
}
