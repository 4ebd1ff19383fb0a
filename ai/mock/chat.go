package mock

import "context"

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via the CompleteFunc field and records
// every prompt pair it receives.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete echoes a fixed canned reply.
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	// Reply is the canned response returned when CompleteFunc is nil.
	Reply string

	calls []CompletionCall
}

// CompletionCall records the prompts of a single Complete invocation.
type CompletionCall struct {
	System string
	User   string
}

// NewMockChatModel creates a mock chat model with a fixed canned reply.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{Reply: "mock answer"}
}

// Complete records the call and returns the injected or canned reply.
func (m *MockChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls = append(m.calls, CompletionCall{System: system, User: user})

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return m.Reply, nil
}

// CallCount returns the number of Complete invocations.
func (m *MockChatModel) CallCount() int {
	return len(m.calls)
}

// Calls returns the recorded prompt pairs in invocation order.
func (m *MockChatModel) Calls() []CompletionCall {
	return m.calls
}

// Reset clears recorded calls and injected behavior.
func (m *MockChatModel) Reset() {
	m.calls = nil
	m.CompleteFunc = nil
	m.Reply = "mock answer"
}
