package api

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Messages are immutable once appended;
// ordering is insertion order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is a named, server-stored message sequence. The client never
// mutates a conversation in place, only replaces its active messages with one.
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// loginResponse is the OAuth2 password-grant token response.
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// signupRequest is the registration payload.
type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupResponse carries either the registration confirmation or a failure detail.
type signupResponse struct {
	Msg    string `json:"msg"`
	Detail string `json:"detail"`
}

// generateRequest asks the backend for a persona-toned completion.
type generateRequest struct {
	Prompt  string `json:"prompt"`
	Persona string `json:"persona"`
}

// generateResponse carries the assistant reply.
type generateResponse struct {
	Response string `json:"response"`
}

// saveConversationRequest persists the current message sequence under a title.
type saveConversationRequest struct {
	Messages []Message `json:"messages"`
	Title    string    `json:"title"`
}
