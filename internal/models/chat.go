package models

const RoleUser = "user"

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatCompletionRequest is the payload sent to the chat-completion endpoint.
type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// NewUserPrompt builds a single-message request carrying text exactly as entered.
func NewUserPrompt(model, text string) ChatCompletionRequest {
	return ChatCompletionRequest{
		Model:    model,
		Messages: []ChatMessage{{Role: RoleUser, Content: text}},
	}
}

// ChatCompletionResponse is the subset of the completion envelope that is read.
// Content is a pointer so a missing or null content is distinguishable from "".
type ChatCompletionResponse struct {
	Choices []ChatCompletionChoice `json:"choices"`
}

type ChatCompletionChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

// SubmitRequest is the JSON body accepted by the submit endpoint.
type SubmitRequest struct {
	InputText string `json:"input_text"`
}

// SubmitAccepted is returned once a submission has been dispatched.
type SubmitAccepted struct {
	SubmissionID string `json:"submission_id"`
	Sequence     int64  `json:"sequence"`
}
