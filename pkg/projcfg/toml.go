package projcfg

import (
	"log/slog"

	"github.com/pelletier/go-toml/v2"
)

// TOMLParser 解析 TOML 文件。
//
// SectionKey 非空时只返回该路径下的子表，例如 {"tool", "acme"} 对应 [tool.acme]；
// 路径上任一 key 缺失或不是表时返回空 map。
//
// 默认严格模式：解码失败返回 [MalformedSourceError]。
// Lenient 为 true 时解码失败返回空 map。
type TOMLParser struct {
	SectionKey []string
	Lenient    bool
}

// NewPyprojectParser 返回读取 pyproject.toml 中 [tool.<name>] 段的 parser。
func NewPyprojectParser(name string) TOMLParser {
	return TOMLParser{SectionKey: []string{"tool", name}}
}

// Parse 实现 [Parser] 接口。
func (p TOMLParser) Parse(content []byte) (map[string]any, error) {
	var values map[string]any
	if err := toml.Unmarshal(content, &values); err != nil {
		if p.Lenient {
			slog.Debug("Ignoring malformed toml", "error", err)

			return map[string]any{}, nil
		}

		return nil, &MalformedSourceError{Format: "toml", Err: err}
	}

	return extractSection(values, p.SectionKey), nil
}

// extractSection 沿 keys 逐级下钻，返回最终的子 map。
func extractSection(values map[string]any, keys []string) map[string]any {
	current := values
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return map[string]any{}
		}
		current = next
	}
	if current == nil {
		return map[string]any{}
	}

	return current
}
