package classifier

// LabelIndex 意图标签与类别编号的双向映射
type LabelIndex struct {
	tags []string
	ids  map[string]int
}

// NewLabelIndex 按首次出现顺序编号
func NewLabelIndex(labels []string) *LabelIndex {
	l := &LabelIndex{ids: make(map[string]int)}
	for _, label := range labels {
		if _, ok := l.ids[label]; ok {
			continue
		}
		l.ids[label] = len(l.tags)
		l.tags = append(l.tags, label)
	}
	return l
}

func (l *LabelIndex) Id(tag string) (int, bool) {
	id, ok := l.ids[tag]
	return id, ok
}

func (l *LabelIndex) Tag(id int) string {
	return l.tags[id]
}

func (l *LabelIndex) Len() int {
	return len(l.tags)
}

func (l *LabelIndex) Tags() []string {
	return append([]string(nil), l.tags...)
}
