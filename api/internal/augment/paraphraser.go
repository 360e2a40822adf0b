package augment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"
	"IntentBot/api/internal/utils"

	"github.com/sashabaranov/go-openai"
	"github.com/zeromicro/go-zero/core/logx"
)

var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)

const systemPrompt = "You rewrite user utterances for a chatbot training set. " +
	"Reply with one paraphrase per line, no numbering, no quotes, same language as the input."

// Paraphraser 调用大模型为训练样例生成改写
type Paraphraser struct {
	client   *openai.Client
	cfg      config.OpenAIConfig
	variants int
}

func NewParaphraser(cfg config.AugmentConfig) *Paraphraser {
	conf := openai.DefaultConfig(cfg.OpenAI.ApiKey)
	if cfg.OpenAI.BaseURL != "" {
		conf.BaseURL = cfg.OpenAI.BaseURL
	}

	return &Paraphraser{
		client:   openai.NewClientWithConfig(conf),
		cfg:      cfg.OpenAI,
		variants: cfg.Variants,
	}
}

// Paraphrase 生成一条样例的若干改写
func (p *Paraphraser) Paraphrase(ctx context.Context, intentTag, pattern string) ([]string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Intent: %s\nUtterance: %s\nWrite %d different paraphrases.",
					intentTag, pattern, p.variants),
			},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API报错: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("未返回改写结果")
	}

	return parseLines(resp.Choices[0].Message.Content, p.variants), nil
}

// Augment 为每个意图追加不重复的改写样例，单条失败只记录日志
func (p *Paraphraser) Augment(ctx context.Context, intents []corpus.Intent) ([]corpus.Intent, int) {
	var added int
	result := make([]corpus.Intent, 0, len(intents))
	for _, intent := range intents {
		seen := make(map[string]struct{}, len(intent.Patterns))
		patterns := make([]string, 0, len(intent.Patterns))
		for _, pattern := range intent.Patterns {
			seen[strings.ToLower(pattern)] = struct{}{}
			patterns = append(patterns, pattern)
		}

		for _, pattern := range intent.Patterns {
			variants, err := p.Paraphrase(ctx, intent.Tag, pattern)
			if err != nil {
				logx.WithContext(ctx).Errorf("改写样例失败 %s/%q：%v", intent.Tag, utils.TruncateText(pattern, 60), err)
				continue
			}
			for _, variant := range variants {
				key := strings.ToLower(variant)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				patterns = append(patterns, variant)
				added++
			}
		}

		result = append(result, corpus.Intent{
			Tag:       intent.Tag,
			Patterns:  patterns,
			Responses: append([]string(nil), intent.Responses...),
		})
	}

	return result, added
}

// 去掉编号、引号和空行，最多保留limit条
func parseLines(content string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(line, "\"'` ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	return lines
}
