package classifier

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var ErrEmptyVocabulary = errors.New("empty vocabulary: training texts contain no terms")

// 词：至少两个字母/数字/下划线
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize 归一化、小写后切词
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(norm.NFC.String(text)), -1)
}

// Vectorizer TF-IDF向量化，fit之后词表与idf冻结
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

// FitVectorizer 在全部训练文本上统计词表和平滑idf
func FitVectorizer(texts []string) (*Vectorizer, error) {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	v := &Vectorizer{
		terms: terms,
		index: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.index[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return v, nil
}

// Dim 特征维度
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

func (v *Vectorizer) vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Transform 将任意文本投影到冻结的特征空间，未登录词忽略
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range Tokenize(text) {
		if i, ok := v.index[term]; ok {
			vec[i]++
		}
	}

	var sum float64
	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		vec[i] = tf * v.idf[i]
		sum += vec[i] * vec[i]
	}
	if sum == 0 {
		return vec
	}

	l2 := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= l2
	}
	return vec
}
