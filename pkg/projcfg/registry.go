package projcfg

import (
	"errors"
	"path/filepath"
	"strings"
)

// Parser 把文件内容解码为嵌套 map。
type Parser interface {
	Parse(content []byte) (map[string]any, error)
}

// ParserFunc 让普通函数实现 [Parser]。
type ParserFunc func(content []byte) (map[string]any, error)

// Parse 实现 [Parser] 接口。
func (f ParserFunc) Parse(content []byte) (map[string]any, error) {
	return f(content)
}

// ConfigParser 按文件路径选择 parser 并解析内容，[Registry] 是它的默认实现。
type ConfigParser interface {
	ParseConfig(path string, content []byte) (map[string]any, error)
}

type parserKey struct {
	suffix string
	stem   string // 空字符串表示该扩展名的通用 parser
}

// Registry 按 (扩展名, 文件名主干) 分发 parser。
//
// 查找顺序：
//  1. (suffix, stem) 精确匹配，例如 pyproject.toml
//  2. (suffix, "") 通用匹配，例如任意 .toml
//
// 两级都未命中时返回 [UnsupportedConfigError]。
type Registry struct {
	parsers map[parserKey]Parser
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[parserKey]Parser)}
}

// Register 注册 parser，stem 可选；同一 key 重复注册会直接覆盖。
//
// suffix 需包含前导点，例如 ".toml"。
func (r *Registry) Register(suffix string, parser Parser, stem ...string) {
	key := parserKey{suffix: suffix}
	if len(stem) > 0 {
		key.stem = stem[0]
	}
	if r.parsers == nil {
		r.parsers = make(map[parserKey]Parser)
	}
	r.parsers[key] = parser
}

// Resolve 返回处理该路径的 parser。
func (r *Registry) Resolve(path string) (Parser, error) {
	suffix, stem := splitName(path)

	if p, ok := r.parsers[parserKey{suffix: suffix, stem: stem}]; ok {
		return p, nil
	}
	if p, ok := r.parsers[parserKey{suffix: suffix}]; ok {
		return p, nil
	}

	return nil, &UnsupportedConfigError{Path: path}
}

// Supports 报告该路径的扩展名是否注册过 parser。
func (r *Registry) Supports(path string) bool {
	_, err := r.Resolve(path)

	return err == nil
}

// ParseConfig 选择 parser 并解析内容，实现 [ConfigParser]。
//
// parser 返回的错误会被包装为带路径的 [MalformedSourceError]。
func (r *Registry) ParseConfig(path string, content []byte) (map[string]any, error) {
	parser, err := r.Resolve(path)
	if err != nil {
		return nil, err
	}

	values, err := parser.Parse(content)
	if err != nil {
		var malformed *MalformedSourceError
		if errors.As(err, &malformed) {
			if malformed.Path != "" {
				return nil, err
			}

			return nil, &MalformedSourceError{Path: path, Format: malformed.Format, Err: malformed.Err}
		}

		return nil, &MalformedSourceError{Path: path, Format: strings.TrimPrefix(filepath.Ext(path), "."), Err: err}
	}
	if values == nil {
		values = map[string]any{}
	}

	return values, nil
}

func splitName(path string) (string, string) {
	base := filepath.Base(path)
	suffix := filepath.Ext(base)

	return suffix, strings.TrimSuffix(base, suffix)
}
