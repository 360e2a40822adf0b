package config

// 语料扩充工具配置
type AugmentConfig struct {
	OpenAI   OpenAIConfig
	Input    string //原始语料文件
	Output   string //扩充后语料输出文件
	Variants int    `json:",default=3"` //每条样例生成的改写数量
}

type OpenAIConfig struct {
	//基础配置
	ApiKey  string `json:",optional"` //API密钥（本地部署留空）
	BaseURL string `json:",optional"` //API基础地址
	Model   string `json:"Model"`     //模型名称

	//核心生成参数
	MaxTokens   int     `json:",default=256"`
	Temperature float32 `json:",default=0.7"` //温度参数（0-2 ,越高越随机）
}
