package projcfg

import (
	"fmt"
	"strings"
)

// LookupFunc 查询变量值，第二个返回值表示变量是否存在（同 os.LookupEnv）。
type LookupFunc func(name string) (string, bool)

// ExpandValues 对 values 中所有字符串叶子执行 ${...} 展开，原地修改并返回 values。
//
// 支持语法：
//   - ${VAR} - 变量替换，未设置时为空字符串
//   - ${VAR:-default} / ${VAR-default} - fallback（带冒号时空值也视为未设置）
//   - ${VAR:?msg} / ${VAR?msg} - 必填校验，失败时返回 error
//   - $$ - 字面量 $
//
// 只处理解码后的字符串值，不会改变 key，也不会影响文件本身的语法。
// 无法识别的表达式保持原样。
func ExpandValues(values map[string]any, lookup LookupFunc) (map[string]any, error) {
	for key, value := range values {
		expanded, err := expandValue(value, lookup)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", key, err)
		}
		values[key] = expanded
	}

	return values, nil
}

func expandValue(value any, lookup LookupFunc) (any, error) {
	switch typed := value.(type) {
	case string:
		return expandString(typed, lookup)
	case map[string]any:
		return ExpandValues(typed, lookup)
	case []any:
		for i, elem := range typed {
			expanded, err := expandValue(elem, lookup)
			if err != nil {
				return nil, err
			}
			typed[i] = expanded
		}

		return typed, nil
	default:
		return value, nil
	}
}

func expandString(text string, lookup LookupFunc) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}

	var buf strings.Builder
	buf.Grow(len(text))

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "$$"):
			buf.WriteByte('$')
			i += 2
		case strings.HasPrefix(text[i:], "${"):
			end := closingBrace(text, i+2)
			if end < 0 {
				buf.WriteString(text[i:])

				return buf.String(), nil
			}
			expanded, ok, err := expandExpr(text[i+2:end], lookup)
			if err != nil {
				return "", err
			}
			if ok {
				buf.WriteString(expanded)
			} else {
				buf.WriteString(text[i : end+1])
			}
			i = end + 1
		default:
			buf.WriteByte(text[i])
			i++
		}
	}

	return buf.String(), nil
}

// closingBrace 返回与 start 之前的 "${" 配对的 "}" 下标，支持嵌套。
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch {
		case text[i] == '$' && i+1 < len(text) && text[i+1] == '{':
			depth++
			i++
		case text[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}

func expandExpr(expr string, lookup LookupFunc) (string, bool, error) {
	n := 0
	for n < len(expr) && isNameByte(expr[n], n == 0) {
		n++
	}
	if n == 0 {
		return "", false, nil
	}

	name, rest := expr[:n], expr[n:]
	val, isSet := lookup(name)
	if rest == "" {
		return val, true, nil
	}

	colon := strings.HasPrefix(rest, ":")
	op := strings.TrimPrefix(rest, ":")
	if op == "" {
		return "", false, nil
	}
	word := op[1:]
	unset := !isSet || (colon && val == "")

	switch op[0] {
	case '-':
		if !unset {
			return val, true, nil
		}
		fallback, err := expandString(word, lookup)

		return fallback, err == nil, err
	case '?':
		if !unset {
			return val, true, nil
		}
		if word == "" {
			word = "parameter null or not set"
		}

		return "", false, fmt.Errorf("%s: %s", name, word)
	}

	return "", false, nil
}

func isNameByte(ch byte, first bool) bool {
	if ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
		return true
	}

	return !first && ch >= '0' && ch <= '9'
}
