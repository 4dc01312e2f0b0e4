package runner

import "errors"

// ErrConversationPaused rejects messages sent to a paused conversation.
// Resume it first.
var ErrConversationPaused = errors.New("conversation is paused")
