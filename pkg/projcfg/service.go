package projcfg

import (
	"fmt"
	"log/slog"
)

// Service 串联文件发现、解析、合并与校验，是 [Config] 的底层实现。
//
// 三个依赖都是接口，测试时可以替换为内存实现。
type Service struct {
	fs        Filesystem
	parser    ConfigParser
	validator Validator
}

// NewService 创建 Service。
func NewService(fs Filesystem, parser ConfigParser, validator Validator) *Service {
	return &Service{
		fs:        fs,
		parser:    parser,
		validator: validator,
	}
}

// FindConfigs 按 sourceFiles 的顺序查找配置文件，返回实际存在的路径。
//
// 未找到的条目被跳过，其余条目保持原有顺序。
func (s *Service) FindConfigs(sourceFiles []string, startingPath string) []string {
	var found []string
	for _, source := range sourceFiles {
		path, ok := s.fs.FindFile(source, startingPath)
		if !ok {
			slog.Debug("Config source not found", "source", source, "start", startingPath)

			continue
		}
		found = append(found, path)
	}

	return found
}

// ConfigValues 解析 paths 中的配置文件。
//
// mergeConfigs 为 false 时只解析第一个文件，后面的文件不会被读取；
// 为 true 时按顺序从左到右深度合并，后面文件的标量值优先。
func (s *Service) ConfigValues(paths []string, mergeConfigs bool) (map[string]any, error) {
	values := map[string]any{}

	for _, path := range paths {
		content, err := s.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}

		parsed, err := s.parser.ParseConfig(path, content)
		if err != nil {
			return nil, err
		}

		if _, err := DeepMerge(values, parsed); err != nil {
			return nil, fmt.Errorf("merge config file %s: %w", path, err)
		}
		slog.Debug("Loaded config from file", "path", path, "merge", mergeConfigs)

		if !mergeConfigs {
			break
		}
	}

	return values, nil
}

// ValidateConfig 使用 schema 校验 values。
func (s *Service) ValidateConfig(values map[string]any, schema Schema) (map[string]any, error) {
	return s.validator.Validate(values, schema)
}
