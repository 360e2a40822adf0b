package logic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"
	"IntentBot/api/internal/svc"
	"IntentBot/api/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFallback    = "Could you rephrase?"
	testEmptyPrompt = "Please write something."
)

type memorySink struct {
	lock  sync.Mutex
	turns []types.Turn
	err   error
}

func (m *memorySink) SaveTurn(_ context.Context, turn types.Turn) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.turns = append(m.turns, turn)
	return m.err
}

func newTestServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	cp, err := corpus.New([]corpus.Intent{
		{Tag: "greeting", Patterns: []string{"hi", "hello"}, Responses: []string{"Hello!"}},
		{Tag: "goodbye", Patterns: []string{"bye", "see you later"}, Responses: []string{"Bye!"}},
		{Tag: "hours", Patterns: []string{"when are you open", "opening hours"}, Responses: []string{"9 to 5."}},
	})
	require.NoError(t, err)

	var c config.Config
	c.Classifier = config.ClassifierConfig{
		Threshold:     0.3,
		HiddenSize:    10,
		MaxIter:       500,
		LearningRate:  0.01,
		Alpha:         0.0001,
		Tol:           0.0001,
		NIterNoChange: 10,
		BatchSize:     200,
		Seed:          42,
	}
	c.Session = config.SessionConfig{NHistory: 2, MaxHistory: 10}
	c.Reply = config.ReplyConfig{Fallback: testFallback, EmptyPrompt: testEmptyPrompt, Seed: 1}

	svcCtx, err := svc.NewServiceContextWithCorpus(c, cp)
	require.NoError(t, err)
	t.Cleanup(svcCtx.Close)
	return svcCtx
}

func chat(t *testing.T, svcCtx *svc.ServiceContext, message, sessionId string) *types.ChatResp {
	t.Helper()
	resp, err := NewChatLogic(context.Background(), svcCtx).Chat(&types.ChatReq{Message: message, SessionId: sessionId})
	require.NoError(t, err)
	return resp
}

func TestChatGreeting(t *testing.T) {
	svcCtx := newTestServiceContext(t)

	resp := chat(t, svcCtx, "hi", "s1")
	assert.Equal(t, "Hello!", resp.Answer)
	assert.Equal(t, "greeting", resp.Intent)
	require.NotNil(t, resp.Confidence)
	assert.GreaterOrEqual(t, *resp.Confidence, 0.3)
	assert.LessOrEqual(t, *resp.Confidence, 1.0)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Text: "hi"},
		{Role: types.RoleBot, Text: "Hello!"},
	}, resp.History)
}

func TestChatEmptyMessage(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	chat(t, svcCtx, "hi", "s1")

	for _, message := range []string{"", "   ", "\t\n"} {
		resp := chat(t, svcCtx, message, "s1")
		assert.Equal(t, &types.ChatResp{Answer: testEmptyPrompt}, resp)
	}
	assert.Len(t, svcCtx.SessionStore.GetOrCreate("s1"), 2)
	assert.Empty(t, svcCtx.SessionStore.GetOrCreate(types.DefaultSessionId))
}

func TestChatTrimsMessageAndDefaultsSession(t *testing.T) {
	svcCtx := newTestServiceContext(t)

	resp := chat(t, svcCtx, "  hello  ", "")
	assert.Equal(t, "hello", resp.History[0].Text)
	assert.Len(t, svcCtx.SessionStore.GetOrCreate(types.DefaultSessionId), 2)
}

func TestChatRejectedIntent(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	svcCtx.Classifier = svcCtx.Classifier.WithThreshold(1.01)

	resp := chat(t, svcCtx, "hi", "s1")
	assert.Equal(t, testFallback, resp.Answer)
	assert.Empty(t, resp.Intent)
	require.NotNil(t, resp.Confidence)
	assert.Greater(t, *resp.Confidence, 0.0)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Text: "hi"},
		{Role: types.RoleBot, Text: testFallback},
	}, resp.History)
}

func TestChatHistoryIsBounded(t *testing.T) {
	svcCtx := newTestServiceContext(t)

	var resp *types.ChatResp
	for n := 1; n <= 8; n++ {
		resp = chat(t, svcCtx, "hello", "s1")
		assert.Len(t, resp.History, min(2*n, 10))
	}
	assert.Equal(t, types.RoleUser, resp.History[0].Role)
	assert.Equal(t, resp.History, svcCtx.SessionStore.GetOrCreate("s1"))
}

func TestChatUsesPriorUserTurns(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	sink := &memorySink{}
	svcCtx.Transcripts = sink

	chat(t, svcCtx, "a", "s1")
	chat(t, svcCtx, "b", "s1")
	chat(t, svcCtx, "c", "s1")
	chat(t, svcCtx, "d", "s2")

	require.Len(t, sink.turns, 4)
	assert.Equal(t, "a", sink.turns[0].ContextualText)
	assert.Equal(t, "a b", sink.turns[1].ContextualText)
	assert.Equal(t, "a b c", sink.turns[2].ContextualText)
	assert.Equal(t, "d", sink.turns[3].ContextualText)
	assert.Equal(t, "c", sink.turns[2].UserText)
	assert.Equal(t, "s2", sink.turns[3].SessionId)
}

func TestChatContextBiasesClassification(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	sink := &memorySink{}
	svcCtx.Transcripts = sink

	chat(t, svcCtx, "hello", "s1")
	chat(t, svcCtx, "qwerty", "s1")

	require.Len(t, sink.turns, 2)
	assert.Equal(t, "hello qwerty", sink.turns[1].ContextualText)
	assert.Equal(t, svcCtx.Classifier.Classify("hello qwerty").Intent, sink.turns[1].Intent)
}

func TestChatTranscriptFailureIsIgnored(t *testing.T) {
	svcCtx := newTestServiceContext(t)
	svcCtx.Transcripts = &memorySink{err: errors.New("db down")}

	resp := chat(t, svcCtx, "bye", "s1")
	assert.Equal(t, "Bye!", resp.Answer)
	assert.Len(t, resp.History, 2)
}

func TestContextualMessage(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Text: "z"},
		{Role: types.RoleBot, Text: "reply z"},
		{Role: types.RoleUser, Text: "a"},
		{Role: types.RoleBot, Text: "reply a"},
		{Role: types.RoleUser, Text: "b"},
		{Role: types.RoleBot, Text: "reply b"},
	}

	assert.Equal(t, "a b c", ContextualMessage(history, "c", 2))
	assert.Equal(t, "b c", ContextualMessage(history, "c", 1))
	assert.Equal(t, "z a b c", ContextualMessage(history, "c", 5))
	assert.Equal(t, "c", ContextualMessage(nil, "c", 2))
	assert.Equal(t, "c", ContextualMessage(history, "c", 0))
	assert.False(t, strings.Contains(ContextualMessage(history, "c", 3), "reply"))
}

func TestRoundConfidence(t *testing.T) {
	assert.Equal(t, 0.87, roundConfidence(0.8666))
	assert.Equal(t, 0.3, roundConfidence(0.304))
	assert.Equal(t, 1.0, roundConfidence(0.999))
	assert.Equal(t, 0.0, roundConfidence(0.001))
}
