package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/zeromicro/go-zero/core/conf"
)

var (
	ErrEmptyCorpus  = errors.New("corpus has no intents")
	ErrDuplicateTag = errors.New("duplicate intent tag")
)

var validate = validator.New()

// 意图定义
type Intent struct {
	Tag       string   `json:"tag" validate:"required"`
	Patterns  []string `json:"patterns" validate:"required,min=1,dive,required"`  //训练样例
	Responses []string `json:"responses" validate:"required,min=1,dive,required"` //候选回复
}

// 语料文件结构
type Document struct {
	Intents []Intent `json:"intents"`
}

// 训练样本
type Example struct {
	Text  string
	Label string
}

// Corpus 启动时加载，之后只读
type Corpus struct {
	intents   []Intent
	examples  []Example
	responses map[string][]string
}

// Load 读取语料文件（json/yaml），结构不合法直接返回错误
func Load(path string) (*Corpus, error) {
	var doc Document
	if err := conf.Load(path, &doc); err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}

	c, err := New(doc.Intents)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return c, nil
}

// New 校验意图并展开为训练样本
func New(intents []Intent) (*Corpus, error) {
	if len(intents) == 0 {
		return nil, ErrEmptyCorpus
	}

	c := &Corpus{
		intents:   make([]Intent, 0, len(intents)),
		responses: make(map[string][]string, len(intents)),
	}
	for i, intent := range intents {
		if err := validate.Struct(intent); err != nil {
			return nil, fmt.Errorf("intent #%d (%q): %w", i, intent.Tag, err)
		}
		if _, ok := c.responses[intent.Tag]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, intent.Tag)
		}

		intent = Intent{
			Tag:       intent.Tag,
			Patterns:  append([]string(nil), intent.Patterns...),
			Responses: append([]string(nil), intent.Responses...),
		}
		c.intents = append(c.intents, intent)
		c.responses[intent.Tag] = intent.Responses
		for _, pattern := range intent.Patterns {
			c.examples = append(c.examples, Example{Text: pattern, Label: intent.Tag})
		}
	}

	return c, nil
}

// Examples 按语料顺序返回全部训练样本
func (c *Corpus) Examples() []Example {
	return append([]Example(nil), c.examples...)
}

// Responses 返回意图的候选回复
func (c *Corpus) Responses(tag string) ([]string, bool) {
	responses, ok := c.responses[tag]
	return responses, ok
}

func (c *Corpus) Tags() []string {
	tags := make([]string, 0, len(c.intents))
	for _, intent := range c.intents {
		tags = append(tags, intent.Tag)
	}
	return tags
}

func (c *Corpus) Intents() []Intent {
	intents := make([]Intent, 0, len(c.intents))
	for _, intent := range c.intents {
		intents = append(intents, Intent{
			Tag:       intent.Tag,
			Patterns:  append([]string(nil), intent.Patterns...),
			Responses: append([]string(nil), intent.Responses...),
		})
	}
	return intents
}

// Save 以json格式写出语料（供语料扩充工具使用）
func Save(path string, intents []Intent) error {
	if _, err := New(intents); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Document{Intents: intents}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
