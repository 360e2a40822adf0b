package types

import "context"

// 会话存储接口
type SessionStore interface {
	GetOrCreate(sessionId string) []Message                   //获取会话历史，不存在返回空
	RecordTurn(sessionId, userText, botText string) []Message //追加一轮对话并截断，返回新历史
}

// 对话记录接口（只写，不用于恢复会话）
type TranscriptSink interface {
	SaveTurn(ctx context.Context, turn Turn) error
}
