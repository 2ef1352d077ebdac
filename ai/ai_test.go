package ai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lac-hong-legacy/ven_companion/ai"
	"github.com/lac-hong-legacy/ven_companion/model"
	"github.com/lac-hong-legacy/ven_companion/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"Plain", "hello", "hello"},
		{"TwoParagraphsKept", "*thinking*\n\nhi there", "*thinking*\n\nhi there"},
		{"ThreeNewlinesCollapsed", "a\n\n\nb", "a\n\nb"},
		{"ManyNewlinesCollapsed", "a\n\n\n\n\n\nb\n\n\n\nc", "a\n\nb\n\nc"},
		{"CRLF", "a\r\n\r\n\r\nb", "a\n\nb"},
		{"ThinkStripped", "<think>plan\nsteps</think>\n\nhey", "hey"},
		{"Trimmed", "  \n hey \n\n", "hey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, ai.NormalizeReply(tt.in))
		})
	}
}

func TestRelationshipContext(t *testing.T) {
	tiers := []float64{0, 25, 60, 95}
	seen := map[string]bool{}
	for _, s := range tiers {
		txt := ai.RelationshipContext(s)
		assert.NotEmpty(t, txt)
		seen[txt] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, ai.RelationshipContext(20), ai.RelationshipContext(49.9))
	assert.NotEqual(t, ai.RelationshipContext(19.9), ai.RelationshipContext(20))
}

func TestBuildConversation(t *testing.T) {
	c := &model.Character{ID: "1", Name: "Mia", Age: 24, Personality: "cheerful barista"}
	var history []model.ChatMessage
	for i := 0; i < 14; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderCharacter
		}
		history = append(history, model.ChatMessage{Text: string(rune('a' + i)), Sender: sender})
	}

	msgs := ai.BuildConversation(c, 55, history, "how was your day?")

	require.Len(t, msgs, 1+ai.HistoryWindow+1)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Mia")
	assert.Contains(t, msgs[0].Content, "cheerful barista")
	assert.Contains(t, msgs[0].Content, ai.RelationshipContext(55))

	// oldest replayed entry is history[4]
	assert.Equal(t, "e", msgs[1].Content)
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Equal(t, ai.RoleAssistant, msgs[2].Role)

	last := msgs[len(msgs)-1]
	assert.Equal(t, ai.RoleUser, last.Role)
	assert.Equal(t, "how was your day?", last.Content)
}

func TestBuildTranscript_SkipsPhotoRequests(t *testing.T) {
	history := []model.ChatMessage{
		{Text: "hi", Sender: model.SenderUser},
		{Text: shared.PhotoRequestMarker, Sender: model.SenderUser},
		{Text: "here you go", Sender: model.SenderCharacter, PhotoURL: "p.jpg"},
	}
	msgs := ai.BuildTranscript(history, ai.HistoryWindow)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, "here you go", msgs[1].Content)
}

func TestOpenAIProvider_Generate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			var req struct {
				Model    string       `json:"model"`
				Messages []ai.Message `json:"messages"`
			}
			require.NoError(t, sonic.Unmarshal(body, &req))
			assert.Equal(t, "test-model", req.Model)
			assert.Len(t, req.Messages, 2)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<think>x</think>*smiles*\n\n\n\nHi!"}}]}`))
		}))
		defer srv.Close()

		p := ai.NewOpenAIProvider(srv.URL+"/", "secret", "test-model", time.Second)
		reply, err := p.Generate(context.Background(), []ai.Message{
			{Role: ai.RoleSystem, Content: "sys"},
			{Role: ai.RoleUser, Content: "hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, "*smiles*\n\nHi!", reply)
	})

	t.Run("TooManyRequests", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := ai.NewOpenAIProvider(srv.URL, "", "m", time.Second)
		_, err := p.Generate(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ai.ErrRateLimited)
		assert.NotErrorIs(t, err, ai.ErrGenerationFailed)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(strings.Repeat("boom", 100)))
		}))
		defer srv.Close()

		p := ai.NewOpenAIProvider(srv.URL, "", "m", time.Second)
		_, err := p.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, ai.ErrGenerationFailed)
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		p := ai.NewOpenAIProvider(srv.URL, "", "m", time.Second)
		_, err := p.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, ai.ErrGenerationFailed)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		p := ai.NewOpenAIProvider(srv.URL, "", "m", 50*time.Millisecond)
		_, err := p.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, ai.ErrGenerationFailed)
	})
}
