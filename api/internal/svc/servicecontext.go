package svc

import (
	"fmt"
	"sync"
	"time"

	"IntentBot/api/internal/classifier"
	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"
	"IntentBot/api/internal/responder"
	"IntentBot/api/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

type ServiceContext struct {
	Config       config.Config
	Corpus       *corpus.Corpus
	Classifier   *classifier.IntentClassifier //启动时训练，之后只读
	Responder    *responder.Selector
	SessionStore types.SessionStore
	Transcripts  types.TranscriptSink //未配置时为nil

	done      chan struct{}
	closeOnce sync.Once
	closers   []func()
}

// 启动失败（语料缺失或格式错误）直接退出
func NewServiceContext(c config.Config) *ServiceContext {
	cp, err := corpus.Load(c.Corpus.Path)
	logx.Must(err)

	svcCtx, err := NewServiceContextWithCorpus(c, cp)
	logx.Must(err)
	return svcCtx
}

func NewServiceContextWithCorpus(c config.Config, cp *corpus.Corpus) (*ServiceContext, error) {
	clf, stats, err := classifier.Train(cp.Examples(), c.Classifier)
	if err != nil {
		return nil, fmt.Errorf("训练意图分类器失败：%w", err)
	}
	if stats.Converged {
		logx.Infof("classifier trained: %d intents, %d features, %d epochs, loss %.4f, threshold %.2f",
			clf.Labels().Len(), clf.Vectorizer().Dim(), stats.Epochs, stats.Loss, clf.Threshold())
	} else {
		//未收敛不影响启动，使用当前模型
		logx.Infof("classifier stopped at max iter %d without converging, loss %.4f, threshold %.2f",
			stats.Epochs, stats.Loss, clf.Threshold())
	}

	sessions := NewMemorySessionStore(c.Session.MaxHistory)
	svcCtx := &ServiceContext{
		Config:       c,
		Corpus:       cp,
		Classifier:   clf,
		Responder:    responder.NewSelector(cp, responder.NewRandSource(c.Reply.Seed), c.Reply.Fallback),
		SessionStore: sessions,
		done:         make(chan struct{}),
	}

	if c.Session.MaxAge > 0 {
		svcCtx.startSessionCleanup(sessions, c.Session.MaxAge, c.Session.CleanupInterval)
	}

	if c.Transcript.DataSource != "" {
		ts, err := OpenTranscriptStore(c.Transcript)
		if err != nil {
			svcCtx.Close()
			return nil, err
		}
		svcCtx.Transcripts = ts
		svcCtx.closers = append(svcCtx.closers, ts.Close)
	}

	return svcCtx, nil
}

// 定期清理空闲会话
func (s *ServiceContext) startSessionCleanup(store *MemorySessionStore, maxAge, interval time.Duration) {
	if interval <= 0 {
		interval = maxAge
	}
	ticker := time.NewTicker(interval)
	threading.GoSafe(func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if removed := store.CleanupExpiredSessions(maxAge); removed > 0 {
					logx.Infof("cleaned up %d expired sessions", removed)
				}
			}
		}
	})
}

func (s *ServiceContext) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		for _, closer := range s.closers {
			closer()
		}
	})
}
