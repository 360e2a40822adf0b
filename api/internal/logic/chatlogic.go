package logic

import (
	"context"
	"math"
	"strings"
	"time"

	"IntentBot/api/internal/svc"
	"IntentBot/api/internal/types"
	"IntentBot/api/internal/utils"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/metric"
)

const (
	noIntentLabel = "none"
	maxLogLength  = 120 //日志中文本最大长度
)

var chatTurns = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: "intentbot",
	Subsystem: "chat",
	Name:      "turns_total",
	Help:      "chat turns by classified intent.",
	Labels:    []string{"intent"},
})

type ChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// 意图识别聊天接口
func NewChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatLogic {
	return &ChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ChatLogic) Chat(req *types.ChatReq) (*types.ChatResp, error) {
	message := strings.TrimSpace(req.Message)
	//空消息直接提示，不分类也不记录
	if message == "" {
		return &types.ChatResp{Answer: l.svcCtx.Config.Reply.EmptyPrompt}, nil
	}

	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = types.DefaultSessionId
	}

	//1.取历史，拼接上下文（只用本轮之前的用户消息）
	history := l.svcCtx.SessionStore.GetOrCreate(sessionId)
	contextual := ContextualMessage(history, message, l.svcCtx.Config.Session.NHistory)

	//2.意图分类
	prediction := l.svcCtx.Classifier.Classify(contextual)
	answer := l.svcCtx.Responder.Reply(prediction.Intent)
	l.Logger.Debugf("session %s classified %q as %q (%.2f)",
		sessionId, utils.TruncateText(contextual, maxLogLength), prediction.Intent, prediction.Confidence)

	//3.记录本轮对话
	history = l.svcCtx.SessionStore.RecordTurn(sessionId, message, answer)

	//4.保存对话记录（失败不影响回复）
	if l.svcCtx.Transcripts != nil {
		if err := l.svcCtx.Transcripts.SaveTurn(l.ctx, types.Turn{
			SessionId:      sessionId,
			UserText:       message,
			ContextualText: contextual,
			BotText:        answer,
			Intent:         prediction.Intent,
			Confidence:     prediction.Confidence,
			CreatedAt:      time.Now(),
		}); err != nil {
			l.Logger.Errorf("保存对话记录失败：%v", err)
		}
	}

	label := prediction.Intent
	if label == "" {
		label = noIntentLabel
	}
	chatTurns.Inc(label)

	confidence := roundConfidence(prediction.Confidence)
	return &types.ChatResp{
		Answer:     answer,
		Intent:     prediction.Intent,
		Confidence: &confidence,
		History:    history,
	}, nil
}

// ContextualMessage 取历史中最近nHistory条用户消息，按时间顺序与当前消息用空格拼接
func ContextualMessage(history []types.Message, message string, nHistory int) string {
	var prev []string
	for _, msg := range history {
		if msg.Role == types.RoleUser {
			prev = append(prev, msg.Text)
		}
	}
	if nHistory < 0 {
		nHistory = 0
	}
	if len(prev) > nHistory {
		prev = prev[len(prev)-nHistory:]
	}
	return strings.Join(append(prev, message), " ")
}

func roundConfidence(confidence float64) float64 {
	return math.Round(confidence*100) / 100
}
