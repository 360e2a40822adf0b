package augment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 模拟OpenAI兼容接口
func newFakeServer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content

		for utterance, reply := range replies {
			if strings.Contains(prompt, "Utterance: "+utterance+"\n") {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
					ID:     "chatcmpl-test",
					Object: "chat.completion",
					Model:  req.Model,
					Choices: []openai.ChatCompletionChoice{{
						Index:        0,
						Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
						FinishReason: openai.FinishReasonStop,
					}},
				})
				return
			}
		}
		http.Error(w, `{"error":{"message":"unknown utterance","type":"server_error"}}`, http.StatusInternalServerError)
	}))
}

func newTestParaphraser(url string) *Paraphraser {
	return NewParaphraser(config.AugmentConfig{
		OpenAI:   config.OpenAIConfig{ApiKey: "test", BaseURL: url, Model: "test-model", MaxTokens: 64},
		Variants: 2,
	})
}

func TestParaphrase(t *testing.T) {
	srv := newFakeServer(t, map[string]string{"hi": "1. hello there\n2) hey\n3. greetings"})
	defer srv.Close()

	variants, err := newTestParaphraser(srv.URL).Paraphrase(context.Background(), "greeting", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello there", "hey"}, variants)
}

func TestParaphraseError(t *testing.T) {
	srv := newFakeServer(t, nil)
	defer srv.Close()

	_, err := newTestParaphraser(srv.URL).Paraphrase(context.Background(), "greeting", "hi")
	assert.Error(t, err)
}

func TestAugment(t *testing.T) {
	srv := newFakeServer(t, map[string]string{
		"hi":  "Hello\n\"hey there\"",
		"bye": "- see you\n- Bye",
	})
	defer srv.Close()

	intents := []corpus.Intent{
		{Tag: "greeting", Patterns: []string{"hi", "hello"}, Responses: []string{"Hello!"}},
		{Tag: "goodbye", Patterns: []string{"bye", "later"}, Responses: []string{"Bye!"}},
	}
	result, added := newTestParaphraser(srv.URL).Augment(context.Background(), intents)

	assert.Equal(t, 2, added)
	assert.Equal(t, []corpus.Intent{
		{Tag: "greeting", Patterns: []string{"hi", "hello", "hey there"}, Responses: []string{"Hello!"}},
		{Tag: "goodbye", Patterns: []string{"bye", "later", "see you"}, Responses: []string{"Bye!"}},
	}, result)
	assert.Equal(t, []string{"hi", "hello"}, intents[0].Patterns)

	_, err := corpus.New(result)
	assert.NoError(t, err)
}

func TestParseLines(t *testing.T) {
	assert.Equal(t, []string{"24 hour support", "open now"},
		parseLines("1. 24 hour support\n\n* 'open now'\n", 0))
	assert.Equal(t, []string{"a"}, parseLines("a\nb", 1))
	assert.Empty(t, parseLines("\n  \n", 3))
}
