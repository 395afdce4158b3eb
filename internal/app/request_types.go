package app

// ChatRequest is the input for one conversational turn. An empty
// ConversationID starts a new conversation.
type ChatRequest struct {
	ConversationID string
	Message        string
}
