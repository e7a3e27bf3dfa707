package ir

// PlaceholderContent is synthesized display content for a resolution whose
// context had to be filled. It is never persisted and is rebuilt per call.
type PlaceholderContent struct {
	Title         string            `json:"title"`
	Subtitle      string            `json:"subtitle"`
	Body          string            `json:"body"`
	IconRef       string            `json:"icon_ref"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}
