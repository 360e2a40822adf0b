package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf
	Corpus struct {
		Path string //意图语料文件（json/yaml）
	}
	Classifier ClassifierConfig
	Session    SessionConfig
	Reply      ReplyConfig
	Transcript TranscriptConfig `json:",optional"` //对话记录库配置（可选）
}

// 分类器训练与推理参数
type ClassifierConfig struct {
	Threshold     float64 `json:",default=0.3"` //置信度阈值，低于则视为未识别
	HiddenSize    int     `json:",default=10"`  //隐藏层神经元数量
	MaxIter       int     `json:",default=500"` //最大训练轮数
	LearningRate  float64 `json:",default=0.01"`
	Alpha         float64 `json:",default=0.0001"` //L2正则系数
	Tol           float64 `json:",default=0.0001"` //收敛容差
	NIterNoChange int     `json:",default=10"`     //连续无改进轮数则提前停止
	BatchSize     int     `json:",default=200"`
	Seed          int64   `json:",default=42"` //随机种子（保证训练可复现）
}

// 会话上下文参数
type SessionConfig struct {
	NHistory        int           `json:",default=2"`   //参与分类的历史用户消息数
	MaxHistory      int           `json:",default=10"`  //每个会话保存的最大消息数
	MaxAge          time.Duration `json:",optional"`    //会话空闲过期时间，0表示不过期
	CleanupInterval time.Duration `json:",default=10m"` //过期清理间隔
}

// 回复文案
type ReplyConfig struct {
	Fallback    string //未识别意图时的兜底回复
	EmptyPrompt string //空消息提示
	Seed        int64  `json:",optional"` //回复随机种子，0表示按时间播种
}

// 对话记录数据库配置
type TranscriptConfig struct {
	DataSource string `json:",optional"` //为空则不记录
	MaxConns   int    `json:",default=4"`
}

// Validate 校验启动参数，失败则服务不启动
func (c Config) Validate() error {
	if c.Corpus.Path == "" {
		return errors.New("corpus path is required")
	}
	if c.Reply.Fallback == "" || c.Reply.EmptyPrompt == "" {
		return errors.New("reply fallback and empty prompt are required")
	}
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier threshold must be within [0,1], got %v", c.Classifier.Threshold)
	}
	if c.Classifier.HiddenSize <= 0 || c.Classifier.MaxIter <= 0 || c.Classifier.BatchSize <= 0 {
		return errors.New("classifier hidden size, max iter and batch size must be positive")
	}
	if c.Session.NHistory <= 0 || c.Session.MaxHistory <= 0 {
		return fmt.Errorf("session windows must be positive, got NHistory=%d MaxHistory=%d",
			c.Session.NHistory, c.Session.MaxHistory)
	}
	if c.Session.MaxAge < 0 {
		return errors.New("session max age must not be negative")
	}
	return nil
}
