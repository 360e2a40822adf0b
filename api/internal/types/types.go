package types

import "time"

const (
	RoleUser = "user"
	RoleBot  = "bot"

	DefaultSessionId = "default"
)

// 会话消息
type Message struct {
	Role string `json:"role"` //消息角色 user/bot
	Text string `json:"text"` //消息内容
}

// 聊天请求
type ChatReq struct {
	Message   string `json:"message,optional"`
	SessionId string `json:"session_id,default=default"`
}

// 聊天响应
type ChatResp struct {
	Answer     string    `json:"answer"`
	Intent     string    `json:"intent,omitempty"`     //未识别意图时不返回
	Confidence *float64  `json:"confidence,omitempty"` //保留两位小数
	History    []Message `json:"history,omitempty"`    //本轮结束后的会话历史
}

// 健康检查响应
type HealthResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// 单轮对话记录
type Turn struct {
	SessionId      string
	UserText       string
	ContextualText string //实际参与分类的文本
	BotText        string
	Intent         string //为空表示未识别
	Confidence     float64
	CreatedAt      time.Time
}
