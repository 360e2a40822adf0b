package main

import (
	"context"
	"flag"

	"IntentBot/api/internal/augment"
	"IntentBot/api/internal/config"
	"IntentBot/api/internal/corpus"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var configFile = flag.String("f", "etc/augment.yaml", "the config file")

// 离线语料扩充：为每条样例生成改写后写出新语料文件
func main() {
	flag.Parse()

	var c config.AugmentConfig
	conf.MustLoad(*configFile, &c)

	cp, err := corpus.Load(c.Input)
	logx.Must(err)

	intents, added := augment.NewParaphraser(c).Augment(context.Background(), cp.Intents())
	logx.Must(corpus.Save(c.Output, intents))
	logx.Infof("added %d patterns, corpus written to %s", added, c.Output)
}
