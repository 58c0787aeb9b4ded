package core

const (
	AppName = "Curebird"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelTier names a class of completion model trading capability for
// latency and cost.
type ModelTier int

const (
	TierFast ModelTier = iota
	TierCapable
)

func (t ModelTier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierCapable:
		return "capable"
	default:
		return "unknown"
	}
}

type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
	// JSONOnly asks the provider to constrain output to a JSON object.
	JSONOnly bool
}

// DiseaseTrend is one aggregated row of the surveillance dataset.
type DiseaseTrend struct {
	Disease   string `json:"disease"`
	Outbreaks int64  `json:"outbreaks"`
	Year      string `json:"year,omitempty"`
	Source    string `json:"source,omitempty"`
}
