package assistant

import (
	"sync"

	"github.com/curebird/backend/internal/core"
	"github.com/pkoukk/tiktoken-go"
)

var (
	tkOnce sync.Once
	tk     *tiktoken.Tiktoken
)

func getTokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return tk
}

// estimateTokens approximates the prompt size of a message sequence.
// cl100k is not the provider's exact vocabulary but is close enough for
// budgeting.
func estimateTokens(messages []core.Message) int {
	tokenizer := getTokenizer()
	total := 0
	for _, m := range messages {
		// Per-message framing overhead
		total += 4
		total += len(tokenizer.Encode(m.Content, nil, nil))
	}
	return total
}

// trimToBudget drops the oldest user/assistant turns until the history
// fits the token budget. The system message at position 0 is always
// kept, as is the final message.
func trimToBudget(messages []core.Message, budget int) []core.Message {
	if budget <= 0 || len(messages) <= 2 {
		return messages
	}
	if estimateTokens(messages) <= budget {
		return messages
	}

	system := messages[0]
	rest := messages[1:]

	for len(rest) > 1 && estimateTokens(append([]core.Message{system}, rest...)) > budget {
		rest = rest[1:]
	}

	return append([]core.Message{system}, rest...)
}
