package nlp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Result kinds returned by Process.
type Kind int

const (
	KindFunctionCall Kind = iota
	KindText
	KindError
)

// Result is the outcome of one extraction turn: a structured operation
// call, a free-text reply, or an error with a user-facing message.
type Result struct {
	Kind Kind
	Call *FunctionCall // set when Kind == KindFunctionCall
	Text string        // set when Kind == KindText or KindError
}

// FunctionCall is one selected catalogue operation. Args is nil when the
// model named an unknown operation or produced unparsable arguments; the
// dispatcher rejects such calls.
type FunctionCall struct {
	Name       string
	ToolCallID string
	Args       Args
}

const (
	msgAPIError        = "AI 서비스에 일시적인 오류가 발생했습니다."
	msgProcessingError = "메시지 처리 중 오류가 발생했습니다."
	msgDefaultReply    = "무엇을 도와드릴까요?"

	maxCompletionTokens = 500
)

var weekdayFullNames = []string{"월요일", "화요일", "수요일", "목요일", "금요일", "토요일", "일요일"}

const systemPromptFormat = `당신은 캘린더 관리 어시스턴트입니다.
사용자의 한국어 요청을 분석하여 적절한 함수를 호출해주세요.

오늘 날짜: %s (%s)

규칙:
- 상대적 날짜(내일, 다음주 월요일 등)는 오늘 날짜 기준으로 절대 날짜(YYYY-MM-DD)로 변환하세요.
- 시간은 24시간 형식(HH:MM)으로 변환하세요. (오후 3시 → 15:00)
- 일정과 관련 없는 일반 대화에는 함수를 호출하지 말고 직접 한국어로 응답하세요.
- 월 단위 검색 시 date_to는 해당 월의 마지막 날로 설정하세요. (2월 → 2월 28일 또는 29일)
- 이전 대화에서 조회한 일정 결과를 참고하여 사용자가 "그거", "첫 번째", "그 회의" 등으로 지칭하는 일정을 파악하세요.
- 사용자가 이전 조회 결과의 일정을 수정/삭제하려 할 때, 해당 일정의 제목/날짜/시간을 정확히 추출하세요.
- 범위 삭제 요청("2월 일정 다 지워줘", "이번 주 일정 전부 삭제")에는 delete_events_by_range를 사용하세요.
- 사용자가 특정 날짜+시간의 기존 일정을 언급하면서 수정/삭제를 요청하면, 새 일정 추가가 아닌 edit_event 또는 delete_event를 호출하세요.
- 출장, 휴가, 여행 등 기간 일정은 add_multiday_event를 사용하세요 (종일 단일 이벤트).
- 매일 같은 시간에 반복되는 일정(회의, 스탠드업 등)은 add_events_by_range를 사용하세요.
- 길찾기 요청은 항상 navigate 함수를 호출하세요. 사용자가 장소명/주소를 직접 말하면 destination 파라미터에 입력하고, 이전 대화의 일정을 참조하면("N번 일정 길찾기", "그 일정 가는 법" 등) 해당 일정의 제목과 날짜를 title/date 파라미터에 입력하세요.
- 일정 조회 결과에는 제목, 시간, 장소(📍), 설명(💬) 정보가 포함됩니다. 사용자가 장소를 물어보면 이 정보를 활용하세요.
- 일정에 별도 장소(📍) 정보가 없더라도, 제목이나 설명에 장소명이 포함되어 있으면 그것을 장소로 인식하여 안내하세요. 예: "신규감독관 교육(고용노동교육원)" → 장소는 "고용노동교육원".`

// Extractor turns free-form Korean chat text into catalogue operation
// calls via the completion API, threading per-chat history and the
// event-context snapshot through every request.
type Extractor struct {
	client  *openai.Client
	model   string
	history *History
	events  *ContextStore
	loc     *time.Location
}

func NewExtractor(apiKey, model string, history *History, events *ContextStore, loc *time.Location) *Extractor {
	return &Extractor{
		client:  openai.NewClient(apiKey),
		model:   model,
		history: history,
		events:  events,
		loc:     loc,
	}
}

func (e *Extractor) systemPrompt(chatID int64) string {
	now := time.Now().In(e.loc)
	prompt := fmt.Sprintf(systemPromptFormat,
		now.Format("2006-01-02"),
		weekdayFullNames[(int(now.Weekday())+6)%7])

	if snapshot := e.events.Format(chatID); snapshot != "" {
		prompt += "\n\n최근 조회된 일정:\n" + snapshot
	}
	return prompt
}

func (e *Extractor) complete(ctx context.Context, chatID int64, extra ...openai.ChatCompletionMessage) (openai.ChatCompletionMessage, error) {
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: e.systemPrompt(chatID),
	}}
	messages = append(messages, e.history.Messages(chatID)...)
	messages = append(messages, extra...)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		Messages:  messages,
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message, nil
}

// Process appends the user message to history and asks the model to
// either select one catalogue operation or answer in free text. Exactly
// one tool call is honored per turn even if the model offered several.
func (e *Extractor) Process(ctx context.Context, chatID int64, text string) Result {
	e.history.AddUserMessage(chatID, text)

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: e.systemPrompt(chatID),
	}}
	messages = append(messages, e.history.Messages(chatID)...)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      e.model,
		Messages:   messages,
		Tools:      toolCatalogue,
		ToolChoice: "auto",
		MaxTokens:  maxCompletionTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.Printf("[nlp] completion API error: %v", apiErr)
			return Result{Kind: KindError, Text: msgAPIError}
		}
		log.Printf("[nlp] completion failed: %v", err)
		return Result{Kind: KindError, Text: msgProcessingError}
	}
	if len(resp.Choices) == 0 {
		log.Printf("[nlp] completion returned no choices")
		return Result{Kind: KindError, Text: msgProcessingError}
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		e.history.AddToolCall(chatID, tc)

		args, err := parseArgs(tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			log.Printf("[nlp] reject tool call %s: %v", tc.Function.Name, err)
		}
		return Result{Kind: KindFunctionCall, Call: &FunctionCall{
			Name:       tc.Function.Name,
			ToolCallID: tc.ID,
			Args:       args,
		}}
	}

	content := msg.Content
	if content == "" {
		content = msgDefaultReply
	}
	e.history.AddAssistantMessage(chatID, content)
	return Result{Kind: KindText, Text: content}
}

// RecordToolResult feeds an operation's output back into the transcript.
func (e *Extractor) RecordToolResult(chatID int64, toolCallID, content string) {
	if toolCallID == "" {
		return
	}
	e.history.AddToolResult(chatID, toolCallID, content)
}

// Followup re-sends the transcript, optionally with an appended
// instruction, and returns the model's free-text reply. The reply is
// recorded as an assistant turn so later references can lean on it.
func (e *Extractor) Followup(ctx context.Context, chatID int64, instruction string) (string, error) {
	var extra []openai.ChatCompletionMessage
	if instruction != "" {
		extra = append(extra, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: instruction,
		})
	}

	msg, err := e.complete(ctx, chatID, extra...)
	if err != nil {
		return "", fmt.Errorf("followup completion: %w", err)
	}
	if msg.Content == "" {
		return "", errors.New("followup returned empty content")
	}

	e.history.AddAssistantMessage(chatID, msg.Content)
	return msg.Content, nil
}

// FilterIndices runs the semantic second pass over a keyword search: the
// remote search is lexical, so the model is asked which of the n listed
// results actually relate to the keyword. The request is self-contained —
// the filter runs between the search tool-call turn and its recorded
// result, so the transcript cannot be replayed here; the candidate
// listing travels in the instruction instead. Any failure degrades to the
// identity filter. Returned indices are 1-based.
func (e *Extractor) FilterIndices(ctx context.Context, chatID int64, keyword, listing string, n int) []int {
	all := make([]int, n)
	for i := range all {
		all[i] = i + 1
	}
	if n == 0 || keyword == "" {
		return all
	}

	instruction := fmt.Sprintf(
		"다음 검색 결과 중 '%s'와 의미상 관련 있는 일정의 번호만 쉼표로 구분해 답하세요. 번호 외에 아무것도 쓰지 마세요. 전부 관련 있으면 모든 번호를 쓰세요.\n\n%s",
		keyword, listing)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: instruction,
		}},
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		log.Printf("[nlp] index filter for chat %d failed, keeping all results: %v", chatID, err)
		return all
	}
	if len(resp.Choices) == 0 {
		return all
	}

	indices := parseIndexList(resp.Choices[0].Message.Content, n)
	if len(indices) == 0 {
		return all
	}
	return indices
}

// parseIndexList extracts 1-based indices from free text, dropping
// duplicates and anything outside [1, n].
func parseIndexList(text string, n int) []int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r < '0' || r > '9'
	})

	seen := make(map[int]bool)
	var indices []int
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil || idx < 1 || idx > n || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	return indices
}
