package projcfg

import (
	"log/slog"

	"gopkg.in/ini.v1"
)

// INIParser 解析 INI 文件为两级 map：{section: {option: string}}。
//
// 行为与 Python configparser 保持一致：
//   - 所有值都是字符串，不做类型推断
//   - option 名统一转为小写
//   - DEFAULT 段不单独输出，其值会被每个段继承（段内同名 option 优先）
//   - 值按原文保留：不剥离行内 # 或 ; 注释，不去除包裹的引号，不处理行尾反斜杠续行
//   - 支持 %(name)s 插值，先查找本段，再查找 DEFAULT 段；找不到时保留原文
//
// 解码失败时返回空 map，从不返回错误。
type INIParser struct{}

// Parse 实现 [Parser] 接口。
func (INIParser) Parse(content []byte) (map[string]any, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:         true,
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
		IgnoreContinuation:      true,
	}, content)
	if err != nil {
		slog.Debug("Ignoring malformed ini", "error", err)

		return map[string]any{}, nil
	}

	defaults := make(map[string]string)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		defaults[key.Name()] = key.String()
	}

	out := make(map[string]any)
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		options := make(map[string]any, len(defaults))
		for key, value := range defaults {
			options[key] = value
		}
		for _, key := range section.Keys() {
			options[key.Name()] = key.String()
		}
		out[section.Name()] = options
	}

	return out, nil
}
