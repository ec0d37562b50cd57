package projcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	yamlv3 "go.yaml.in/yaml/v3"
)

var errRootNotMapping = errors.New("config root must be a mapping")

// YAMLParser 解析 YAML 文件，根节点必须是 mapping。
//
// 严格/宽松策略与 [TOMLParser] 相同。
type YAMLParser struct {
	Lenient bool
}

// Parse 实现 [Parser] 接口。
func (p YAMLParser) Parse(content []byte) (map[string]any, error) {
	return decodeDocument("yaml", p.Lenient, content, yamlv3.Unmarshal)
}

// JSONParser 解析 JSON 文件，根节点必须是 object。
type JSONParser struct {
	Lenient bool
}

// Parse 实现 [Parser] 接口。
func (p JSONParser) Parse(content []byte) (map[string]any, error) {
	return decodeDocument("json", p.Lenient, content, json.Unmarshal)
}

func decodeDocument(format string, lenient bool, content []byte, unmarshal func([]byte, any) error) (map[string]any, error) {
	values, err := decodeMapping(content, unmarshal)
	if err != nil {
		if lenient {
			slog.Debug("Ignoring malformed config", "format", format, "error", err)

			return map[string]any{}, nil
		}

		return nil, &MalformedSourceError{Format: format, Err: err}
	}

	return values, nil
}

func decodeMapping(content []byte, unmarshal func([]byte, any) error) (map[string]any, error) {
	if len(content) == 0 {
		return map[string]any{}, nil
	}

	var raw any
	if err := unmarshal(content, &raw); err != nil {
		return nil, err
	}

	normalized := normalizeMapKeys(raw)
	if normalized == nil {
		return map[string]any{}, nil
	}
	values, ok := normalized.(map[string]any)
	if !ok {
		return nil, errRootNotMapping
	}

	return values, nil
}

// normalizeMapKeys 把 map[any]any 统一转换为 map[string]any。
func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = normalizeMapKeys(value)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	default:
		return val
	}
}
