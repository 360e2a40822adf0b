package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"

	"gonum.org/v1/gonum/mat"
)

var ErrNoExamples = errors.New("no training examples")

// Prediction 分类结果，未通过阈值时Intent为空但仍给出置信度
type Prediction struct {
	Intent     string
	Confidence float64
	Accepted   bool
}

// IntentClassifier 启动时训练一次，之后只读，可并发使用
type IntentClassifier struct {
	vectorizer *Vectorizer
	labels     *LabelIndex
	model      *mlp
	threshold  float64
}

// Train 拟合向量化器并训练神经网络；未收敛不视为错误
func Train(examples []corpus.Example, cfg config.ClassifierConfig) (*IntentClassifier, TrainStats, error) {
	if len(examples) == 0 {
		return nil, TrainStats{}, ErrNoExamples
	}

	texts := make([]string, len(examples))
	tags := make([]string, len(examples))
	for i, example := range examples {
		texts[i] = example.Text
		tags[i] = example.Label
	}

	vectorizer, err := FitVectorizer(texts)
	if err != nil {
		return nil, TrainStats{}, fmt.Errorf("fit vectorizer: %w", err)
	}
	labels := NewLabelIndex(tags)

	n, dim := len(examples), vectorizer.Dim()
	features := make([]float64, 0, n*dim)
	targets := make([]int, n)
	for i := range examples {
		features = append(features, vectorizer.Transform(texts[i])...)
		targets[i], _ = labels.Id(tags[i])
	}

	rnd := rand.New(rand.NewSource(cfg.Seed))
	model := newMLP(dim, cfg.HiddenSize, labels.Len(), rnd)
	stats := fit(model, mat.NewDense(n, dim, features), targets, cfg, rnd)

	return &IntentClassifier{
		vectorizer: vectorizer,
		labels:     labels,
		model:      model,
		threshold:  cfg.Threshold,
	}, stats, nil
}

// fit 小批量Adam训练，损失连续NIterNoChange轮无明显下降则提前停止
func fit(model *mlp, x *mat.Dense, y []int, cfg config.ClassifierConfig, rnd *rand.Rand) TrainStats {
	n, dim := x.Dims()
	batchSize := min(cfg.BatchSize, n)
	opt := newAdam(cfg.LearningRate, model.params())

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	var stats TrainStats
	best := math.Inf(1)
	noImprovement := 0
	for epoch := 1; epoch <= cfg.MaxIter; epoch++ {
		rnd.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var total float64
		for start := 0; start < n; start += batchSize {
			idx := order[start:min(start+batchSize, n)]
			batch := mat.NewDense(len(idx), dim, nil)
			labels := make([]int, len(idx))
			for i, row := range idx {
				batch.SetRow(i, x.RawRowView(row))
				labels[i] = y[row]
			}

			loss, grads := model.gradients(batch, labels, cfg.Alpha)
			opt.step(model.params(), grads)
			total += loss * float64(len(idx))
		}

		stats.Epochs = epoch
		stats.Loss = total / float64(n)
		if stats.Loss > best-cfg.Tol {
			noImprovement++
		} else {
			noImprovement = 0
		}
		best = math.Min(best, stats.Loss)
		if noImprovement > cfg.NIterNoChange {
			stats.Converged = true
			break
		}
	}

	return stats
}

// Probabilities 按类别编号返回各意图概率
func (c *IntentClassifier) Probabilities(text string) []float64 {
	return c.model.predict(c.vectorizer.Transform(text))
}

// Classify 取概率最大的意图，低于阈值则不接受
func (c *IntentClassifier) Classify(text string) Prediction {
	probs := c.Probabilities(text)
	best := argmax(probs)

	prediction := Prediction{Confidence: probs[best]}
	if prediction.Confidence < c.threshold {
		return prediction
	}
	prediction.Intent = c.labels.Tag(best)
	prediction.Accepted = true
	return prediction
}

// WithThreshold 返回共享同一模型、阈值不同的分类器
func (c *IntentClassifier) WithThreshold(threshold float64) *IntentClassifier {
	clone := *c
	clone.threshold = threshold
	return &clone
}

func (c *IntentClassifier) Threshold() float64 {
	return c.threshold
}

func (c *IntentClassifier) Labels() *LabelIndex {
	return c.labels
}

func (c *IntentClassifier) Vectorizer() *Vectorizer {
	return c.vectorizer
}

// 并列最大值取编号最小者
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
