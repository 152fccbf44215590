package providers

// CompletionCandidate represents a single completion suggestion
type CompletionCandidate struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail,omitempty"`
}

const (
	KindValue    = "value"
	KindVariable = "variable"
)
