package responder

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource 随机源，*rand.Rand即满足
type RandSource interface {
	Intn(n int) int
}

// ResponseLookup 按意图查询候选回复
type ResponseLookup interface {
	Responses(tag string) ([]string, bool)
}

// Selector 从意图的候选回复中等概率随机选一条
type Selector struct {
	lookup   ResponseLookup
	fallback string

	lock sync.Mutex //rand.Rand非并发安全
	rnd  RandSource
}

func NewSelector(lookup ResponseLookup, rnd RandSource, fallback string) *Selector {
	return &Selector{
		lookup:   lookup,
		fallback: fallback,
		rnd:      rnd,
	}
}

// NewRandSource seed为0时按当前时间播种
func NewRandSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Reply 意图为空或未知时返回兜底回复
func (s *Selector) Reply(tag string) string {
	if tag == "" {
		return s.fallback
	}
	responses, ok := s.lookup.Responses(tag)
	if !ok || len(responses) == 0 {
		return s.fallback
	}

	s.lock.Lock()
	i := s.rnd.Intn(len(responses))
	s.lock.Unlock()
	return responses[i]
}
