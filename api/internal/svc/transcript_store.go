package svc

import (
	"context"
	"fmt"
	"time"

	"IntentBot/api/internal/config"
	"IntentBot/api/internal/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTranscriptTable = `CREATE TABLE IF NOT EXISTS chat_transcript (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL,
	user_text TEXT NOT NULL,
	contextual_text TEXT NOT NULL,
	bot_text TEXT NOT NULL,
	intent TEXT,
	confidence DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`
	insertTurn = `INSERT INTO chat_transcript (id,session_id,user_text,contextual_text,bot_text,intent,confidence,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
)

// 对话记录存储（只追加写入，不参与会话恢复）
type TranscriptStore struct {
	Pool *pgxpool.Pool //数据库连接池
}

// 初始化对话记录存储
func NewTranscriptStore(cfg config.TranscriptConfig) (*TranscriptStore, error) {
	//解析配置
	poolConfig, err := pgxpool.ParseConfig(cfg.DataSource)
	if err != nil {
		return nil, fmt.Errorf("解析对话记录库配置失败：%w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns) //设置最大连接数
	}

	//创建连接池
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("创建对话记录库连接池失败：%w", err)
	}
	return &TranscriptStore{Pool: pool}, nil
}

// 建表（已存在则跳过）
func (ts *TranscriptStore) EnsureSchema(ctx context.Context) error {
	_, err := ts.Pool.Exec(ctx, createTranscriptTable)
	return err
}

// 保存一轮对话
func (ts *TranscriptStore) SaveTurn(ctx context.Context, turn types.Turn) error {
	_, err := ts.Pool.Exec(ctx, insertTurn, turnArgs(turn)...)
	return err
}

func turnArgs(turn types.Turn) []any {
	var intent *string //未识别意图写入NULL
	if turn.Intent != "" {
		intent = &turn.Intent
	}
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{
		uuid.New(),
		turn.SessionId,
		turn.UserText,
		turn.ContextualText,
		turn.BotText,
		intent,
		turn.Confidence,
		createdAt,
	}
}

// 连接、探活并建表，任一步失败都关闭连接池
func OpenTranscriptStore(cfg config.TranscriptConfig) (*TranscriptStore, error) {
	ts, err := NewTranscriptStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.TestConnection(ctx); err != nil {
		ts.Close()
		return nil, err
	}
	if err := ts.EnsureSchema(ctx); err != nil {
		ts.Close()
		return nil, fmt.Errorf("初始化对话记录表失败：%w", err)
	}
	return ts, nil
}

// 测试数据库连接
func (ts *TranscriptStore) TestConnection(ctx context.Context) error {
	if err := ts.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("对话记录库连接失败：%w", err)
	}
	return nil
}

func (ts *TranscriptStore) Close() {
	ts.Pool.Close()
}
