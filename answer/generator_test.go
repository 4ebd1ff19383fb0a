package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mediqa/mediqa/ai"
	"github.com/mediqa/mediqa/ai/mock"
	"github.com/mediqa/mediqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	result  string
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string, numResults int) string {
	s.queries = append(s.queries, query)
	return s.result
}

func TestNewGenerator(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		g, err := NewGenerator(mock.NewMockChatModel())
		require.NoError(t, err)
		assert.NotNil(t, g)
	})

	t.Run("nil model", func(t *testing.T) {
		_, err := NewGenerator(nil)
		assert.Equal(t, ErrModelRequired, err)
	})
}

func TestGenerate_HappyPath(t *testing.T) {
	model := mock.NewMockChatModel()
	model.Reply = "  Hypertension is persistently elevated blood pressure.  "

	g, err := NewGenerator(model)
	require.NoError(t, err)

	text, sources := g.Generate(context.Background(), "what is hypertension",
		"[Hypertension - Overview]\nElevated blood pressure.",
		core.ModeConcise, []string{"WHO", "CDC", "WHO"})

	assert.Equal(t, "Hypertension is persistently elevated blood pressure.", text)
	assert.Equal(t, []string{"WHO", "CDC"}, sources, "sources are deduplicated")
	assert.Equal(t, 1, model.CallCount())
}

func TestGenerate_PromptContents(t *testing.T) {
	model := mock.NewMockChatModel()
	g, err := NewGenerator(model)
	require.NoError(t, err)

	t.Run("with context and sources", func(t *testing.T) {
		model.Reset()
		g.Generate(context.Background(), "what causes anemia", "Iron deficiency is the most common cause.",
			core.ModeDetailed, []string{"WHO"})

		call := model.Calls()[0]
		assert.Contains(t, call.System, RefusalMessage)
		assert.Contains(t, call.User, "### Context:\nIron deficiency is the most common cause.")
		assert.Contains(t, call.User, "### User Question:\nwhat causes anemia")
		assert.Contains(t, call.User, "200-300 words")
		assert.Contains(t, call.User, "Relevant Sources: WHO")
	})

	t.Run("empty context placeholder", func(t *testing.T) {
		model.Reset()
		g.Generate(context.Background(), "q", "   ", core.ModeConcise, nil)

		call := model.Calls()[0]
		assert.Contains(t, call.User, "No relevant context available.")
		assert.Contains(t, call.User, "80-120 words")
		assert.NotContains(t, call.User, "Relevant Sources:")
	})
}

func TestGenerate_FailureMessages(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return "", errors.New("connection refused")
		}
		g, err := NewGenerator(model)
		require.NoError(t, err)

		text, sources := g.Generate(context.Background(), "q", "ctx", core.ModeConcise, []string{"WHO"})
		assert.Equal(t, NetworkFailureMessage, text)
		assert.Equal(t, []string{"WHO"}, sources)
	})

	t.Run("malformed response", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return "", fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
		}
		g, err := NewGenerator(model)
		require.NoError(t, err)

		text, _ := g.Generate(context.Background(), "q", "ctx", core.ModeConcise, nil)
		assert.Equal(t, InvalidResponseMessage, text)
	})
}

func TestGenerate_WebFallback(t *testing.T) {
	insufficient := "I don't have enough medical information to answer confidently."

	t.Run("retry replaces answer and adds web source", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(user, "### Additional Web Search Results:") {
				return "Grounded answer from web results.", nil
			}
			return insufficient, nil
		}
		searcher := &stubSearcher{result: "Title\nSnippet about the condition.\nhttps://example.org"}

		g, err := NewGenerator(model, WithSearcher(searcher))
		require.NoError(t, err)

		text, sources := g.Generate(context.Background(), "rare condition question", "thin context",
			core.ModeDetailed, []string{"WHO"})

		assert.Equal(t, "Grounded answer from web results.", text)
		assert.Equal(t, []string{"WHO", WebSearchSource}, sources)
		assert.Equal(t, 2, model.CallCount())
		require.Len(t, searcher.queries, 1, "at most one web search per generation")
		assert.Equal(t, "rare condition question", searcher.queries[0], "web search uses the original query")
		assert.Contains(t, model.Calls()[1].User, searcher.result)
	})

	t.Run("curly apostrophe still detected", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.Reply = "I don’t have enough medical information to answer confidently."
		searcher := &stubSearcher{result: ""}

		g, err := NewGenerator(model, WithSearcher(searcher))
		require.NoError(t, err)

		g.Generate(context.Background(), "q", "", core.ModeConcise, nil)
		assert.Len(t, searcher.queries, 1)
	})

	t.Run("empty web result keeps first answer", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.Reply = insufficient
		searcher := &stubSearcher{result: "  "}

		g, err := NewGenerator(model, WithSearcher(searcher))
		require.NoError(t, err)

		text, sources := g.Generate(context.Background(), "q", "", core.ModeConcise, nil)
		assert.Equal(t, insufficient, text)
		assert.NotContains(t, sources, WebSearchSource)
		assert.Equal(t, 1, model.CallCount())
	})

	t.Run("retry failure annotates first answer", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(user, "### Additional Web Search Results:") {
				return "", errors.New("timeout")
			}
			return insufficient, nil
		}
		searcher := &stubSearcher{result: "web block"}

		g, err := NewGenerator(model, WithSearcher(searcher))
		require.NoError(t, err)

		text, sources := g.Generate(context.Background(), "q", "", core.ModeConcise, nil)
		assert.Equal(t, insufficient+"\n\nWeb search data could not be processed.", text)
		assert.NotContains(t, sources, WebSearchSource)
	})

	t.Run("no searcher means no fallback", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.Reply = insufficient

		g, err := NewGenerator(model)
		require.NoError(t, err)

		text, _ := g.Generate(context.Background(), "q", "", core.ModeConcise, nil)
		assert.Equal(t, insufficient, text)
		assert.Equal(t, 1, model.CallCount())
	})

	t.Run("web source not duplicated", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(user, "### Additional Web Search Results:") {
				return "better answer", nil
			}
			return insufficient, nil
		}
		searcher := &stubSearcher{result: "web block"}

		g, err := NewGenerator(model, WithSearcher(searcher))
		require.NoError(t, err)

		_, sources := g.Generate(context.Background(), "q", "", core.ModeConcise, []string{WebSearchSource})
		assert.Equal(t, []string{WebSearchSource}, sources)
	})
}

func TestReportsInsufficiency(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"I don't have enough medical information to answer confidently.", true},
		{"I DON'T HAVE ENOUGH MEDICAL INFORMATION.", true},
		{"There is insufficient context to decide.", true},
		{"Sadly, not enough information was provided.", true},
		{"Hypertension is high blood pressure.", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, reportsInsufficiency(tc.text), tc.text)
	}
}
