package models

// ToolCall is a request to invoke a named capability, produced either by the
// model provider's structured channel or reconstructed from a textual
// directive. Args is untrusted until validated by the tool.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
	// RawArgs holds the undecoded argument payload when the provider sent
	// arguments as a string instead of a structured object.
	RawArgs string `json:"raw_args,omitempty"`
}

// ToolResult carries the opaque payload a dispatched tool returned, fed back
// to the model as context for the next iteration.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// CallerIdentity is the authoritative sender identity supplied by the
// transport. Model-provided identity fields are always discarded in favor of
// these values.
type CallerIdentity struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}
