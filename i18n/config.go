// Package i18n 提供多语言消息加载、语言解析与请求级语言传递
package i18n

// Config 多语言配置
type Config struct {
	// Basename 资源文件基础名，多个以逗号分隔
	Basename string `json:"basename" yaml:"basename" mapstructure:"basename"`
	// Dir 资源文件目录
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
	// DefaultLocale 无法从请求确定语言时使用
	DefaultLocale string `json:"default_locale" yaml:"default_locale" mapstructure:"default-locale"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Basename:      "messages",
		Dir:           "i18n",
		DefaultLocale: "zh-CN",
	}
}
