package runner

import (
	"log"
	"os"
	"time"
)

var logger = log.New(os.Stdout, "[Runner]: ", log.Lshortfile|log.LstdFlags)

const (
	defaultEventPageSize = 20
	maxEventPageSize     = 100
)

// Event is one entry in a conversation's append-only log. IDs are the
// event's offset in the log, which is what pagination pages over.
type Event struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventUserMessage = "user_message"
	EventAgentReply  = "agent_reply"
	EventAgentError  = "agent_error"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	ConversationID string `json:"conversation_id"`
}

type listEventsResponse struct {
	Events     []Event `json:"events"`
	NextPageID *int    `json:"next_page_id,omitempty"`
}

type setSecretsRequest struct {
	Secrets map[string]string `json:"secrets"`
}

type setPolicyRequest struct {
	Policy string `json:"policy"`
}
