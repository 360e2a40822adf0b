package svc

import (
	"sync"
	"time"

	"IntentBot/api/internal/types"
)

// 内存会话存储实现
type MemorySessionStore struct {
	sessions     map[string][]types.Message //会话历史 key=sessionId
	lastAccessed map[string]time.Time       //记录会话最后一轮对话时间
	maxHistory   int                        //每个会话保留的最大消息数
	lock         sync.RWMutex               //读写锁，来保证并发安全
}

// 初始化空的会话存储
func NewMemorySessionStore(maxHistory int) *MemorySessionStore {
	return &MemorySessionStore{
		sessions:     make(map[string][]types.Message),
		lastAccessed: make(map[string]time.Time),
		maxHistory:   maxHistory,
	}
}

// 获取会话历史，新会话返回空历史（不创建记录）
func (m *MemorySessionStore) GetOrCreate(sessionId string) []types.Message {
	m.lock.RLock()
	defer m.lock.RUnlock()

	history, exists := m.sessions[sessionId]
	if !exists {
		return []types.Message{}
	}
	return append([]types.Message(nil), history...)
}

// 记录一轮对话：追加用户与机器人消息，截断后整体替换
func (m *MemorySessionStore) RecordTurn(sessionId, userText, botText string) []types.Message {
	m.lock.Lock()
	defer m.lock.Unlock()

	old := m.sessions[sessionId]
	history := make([]types.Message, 0, len(old)+2)
	history = append(history, old...)
	history = append(history,
		types.Message{Role: types.RoleUser, Text: userText},
		types.Message{Role: types.RoleBot, Text: botText},
	)
	//上下文截断（只保留最近maxHistory条）
	if len(history) > m.maxHistory {
		history = history[len(history)-m.maxHistory:]
	}

	m.sessions[sessionId] = history
	m.lastAccessed[sessionId] = time.Now()
	return append([]types.Message(nil), history...)
}

func (m *MemorySessionStore) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions)
}

// 清理过期对话（可定期调用），返回清理数量
func (m *MemorySessionStore) CleanupExpiredSessions(maxAge time.Duration) int {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := time.Now()
	var removed int
	for sessionId, lastAccessed := range m.lastAccessed {
		if now.Sub(lastAccessed) > maxAge {
			delete(m.sessions, sessionId)
			delete(m.lastAccessed, sessionId)
			removed++
		}
	}
	return removed
}
