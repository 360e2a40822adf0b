package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// TrainStats 训练结果统计
type TrainStats struct {
	Epochs    int
	Loss      float64
	Converged bool //false表示达到最大轮数仍未收敛
}

// 单隐藏层感知机：relu隐藏层 + softmax输出
type mlp struct {
	w1 *mat.Dense // in x hidden
	b1 *mat.Dense // 1 x hidden
	w2 *mat.Dense // hidden x classes
	b2 *mat.Dense // 1 x classes
}

// Glorot均匀初始化
func newMLP(in, hidden, out int, rnd *rand.Rand) *mlp {
	return &mlp{
		w1: glorot(in, hidden, in, hidden, rnd),
		b1: glorot(1, hidden, in, hidden, rnd),
		w2: glorot(hidden, out, hidden, out, rnd),
		b2: glorot(1, out, hidden, out, rnd),
	}
}

func glorot(r, c, fanIn, fanOut int, rnd *rand.Rand) *mat.Dense {
	bound := math.Sqrt(6 / float64(fanIn+fanOut))
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (rnd.Float64()*2 - 1) * bound
	}
	return mat.NewDense(r, c, data)
}

func (m *mlp) params() []*mat.Dense {
	return []*mat.Dense{m.w1, m.b1, m.w2, m.b2}
}

// forward 只读模型参数，可并发调用
func (m *mlp) forward(x *mat.Dense) (hidden, probs *mat.Dense) {
	n, _ := x.Dims()
	_, h := m.w1.Dims()
	_, k := m.w2.Dims()

	hidden = mat.NewDense(n, h, nil)
	hidden.Mul(x, m.w1)
	hidden.Apply(func(_, j int, v float64) float64 {
		return math.Max(0, v+m.b1.At(0, j))
	}, hidden)

	probs = mat.NewDense(n, k, nil)
	probs.Mul(hidden, m.w2)
	probs.Apply(func(_, j int, v float64) float64 {
		return v + m.b2.At(0, j)
	}, probs)
	for i := 0; i < n; i++ {
		softmax(probs.RawRowView(i))
	}

	return hidden, probs
}

func (m *mlp) predict(x []float64) []float64 {
	_, probs := m.forward(mat.NewDense(1, len(x), x))
	return append([]float64(nil), probs.RawRowView(0)...)
}

// gradients 计算一个批次的损失（交叉熵+L2）与梯度
func (m *mlp) gradients(x *mat.Dense, y []int, alpha float64) (float64, []*mat.Dense) {
	n, in := x.Dims()
	_, h := m.w1.Dims()
	_, k := m.w2.Dims()
	hidden, probs := m.forward(x)

	var loss float64
	delta := mat.DenseCopyOf(probs)
	for i, label := range y {
		loss -= math.Log(math.Max(probs.At(i, label), 1e-10))
		delta.Set(i, label, delta.At(i, label)-1)
	}
	loss /= float64(n)
	loss += alpha / (2 * float64(n)) * (sumSquares(m.w1) + sumSquares(m.w2))
	delta.Scale(1/float64(n), delta)

	gw2 := mat.NewDense(h, k, nil)
	gw2.Mul(hidden.T(), delta)
	addScaled(gw2, m.w2, alpha/float64(n))
	gb2 := colSums(delta)

	dHidden := mat.NewDense(n, h, nil)
	dHidden.Mul(delta, m.w2.T())
	dHidden.Apply(func(i, j int, v float64) float64 {
		if hidden.At(i, j) <= 0 {
			return 0
		}
		return v
	}, dHidden)

	gw1 := mat.NewDense(in, h, nil)
	gw1.Mul(x.T(), dHidden)
	addScaled(gw1, m.w1, alpha/float64(n))
	gb1 := colSums(dHidden)

	return loss, []*mat.Dense{gw1, gb1, gw2, gb2}
}

func softmax(row []float64) {
	maxVal := math.Inf(-1)
	for _, v := range row {
		maxVal = math.Max(maxVal, v)
	}

	var sum float64
	for i, v := range row {
		row[i] = math.Exp(v - maxVal)
		sum += row[i]
	}
	for i := range row {
		row[i] /= sum
	}
}

func sumSquares(a *mat.Dense) float64 {
	var sum float64
	for _, v := range a.RawMatrix().Data {
		sum += v * v
	}
	return sum
}

func addScaled(dst, src *mat.Dense, scale float64) {
	var scaled mat.Dense
	scaled.Scale(scale, src)
	dst.Add(dst, &scaled)
}

func colSums(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	sums := mat.NewDense(1, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums.Set(0, j, sums.At(0, j)+a.At(i, j))
		}
	}
	return sums
}

// adam 优化器，状态与参数一一对应
type adam struct {
	lr   float64
	t    int
	m, v [][]float64
}

func newAdam(lr float64, params []*mat.Dense) *adam {
	a := &adam{lr: lr}
	for _, p := range params {
		size := len(p.RawMatrix().Data)
		a.m = append(a.m, make([]float64, size))
		a.v = append(a.v, make([]float64, size))
	}
	return a
}

func (a *adam) step(params, grads []*mat.Dense) {
	a.t++
	lr := a.lr * math.Sqrt(1-math.Pow(adamBeta2, float64(a.t))) / (1 - math.Pow(adamBeta1, float64(a.t)))

	for k, p := range params {
		data := p.RawMatrix().Data
		grad := grads[k].RawMatrix().Data
		m, v := a.m[k], a.v[k]
		for i := range data {
			m[i] = adamBeta1*m[i] + (1-adamBeta1)*grad[i]
			v[i] = adamBeta2*v[i] + (1-adamBeta2)*grad[i]*grad[i]
			data[i] -= lr * m[i] / (math.Sqrt(v[i]) + adamEpsilon)
		}
	}
}
