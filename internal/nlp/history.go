package nlp

import (
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// MaxHistory caps the per-chat conversation history. Oldest entries are
// dropped first.
const MaxHistory = 50

// History holds the per-chat conversation transcript sent back to the
// model on every turn. Entries include user messages, assistant replies,
// assistant tool-call turns and tool execution results.
type History struct {
	mu    sync.Mutex
	chats map[int64][]openai.ChatCompletionMessage
}

func NewHistory() *History {
	return &History{chats: make(map[int64][]openai.ChatCompletionMessage)}
}

func (h *History) append(chatID int64, msg openai.ChatCompletionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	hist := append(h.chats[chatID], msg)
	if len(hist) > MaxHistory {
		hist = hist[len(hist)-MaxHistory:]
		// Trimming can cut between a tool-call turn and its result.
		// A transcript opening with an orphaned tool message is rejected
		// by the completion API, so drop the orphan head.
		for len(hist) > 0 && hist[0].Role == openai.ChatMessageRoleTool {
			hist = hist[1:]
		}
	}
	h.chats[chatID] = hist
}

func (h *History) AddUserMessage(chatID int64, content string) {
	h.append(chatID, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
}

func (h *History) AddAssistantMessage(chatID int64, content string) {
	h.append(chatID, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: content,
	})
}

// AddToolCall records the assistant turn that selected a tool, so the
// model can see its own selection on later turns.
func (h *History) AddToolCall(chatID int64, call openai.ToolCall) {
	h.append(chatID, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{call},
	})
}

// AddToolResult records a tool execution result against its originating
// tool call.
func (h *History) AddToolResult(chatID int64, toolCallID, content string) {
	h.append(chatID, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		ToolCallID: toolCallID,
		Content:    content,
	})
}

// Messages returns a copy of the chat's transcript.
func (h *History) Messages(chatID int64) []openai.ChatCompletionMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.chats[chatID]
	out := make([]openai.ChatCompletionMessage, len(hist))
	copy(out, hist)
	return out
}

// Len reports the current transcript length for a chat.
func (h *History) Len(chatID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.chats[chatID])
}
