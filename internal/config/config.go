// Package config 提供 projcfg 命令行工具自身的配置。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - pyproject.toml 的 [tool.projcfg] 段与 .projcfg.toml，后者优先
//  3. 环境变量 - PROJCFG_ 前缀，例如 PROJCFG_EXPAND_ENV
//  4. CLI flags - 仅当用户显式设置时覆盖
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/pkg/projcfg"
)

// AppName 工具名称，同时用作自身配置的段名。
const AppName = "projcfg"

// Config 工具配置。
//
//nolint:tagliatelle
type Config struct {
	Name      string   `json:"name"       desc:"项目名称，pyproject.toml 中读取 [tool.<name>] 段" validate:"required"`
	Sources   []string `json:"sources"    desc:"按顺序查找的配置文件，可重复指定"`
	Start     string   `json:"start"      desc:"向上搜索的起始目录，默认当前目录"`
	Merge     bool     `json:"merge"      desc:"合并全部找到的文件，后面的文件优先"`
	Lenient   bool     `json:"lenient"    desc:"格式错误的文件视为空配置"`
	ExpandEnv bool     `json:"expand-env" desc:"展开字符串中的 ${VAR}"`
	Format    string   `json:"format"     desc:"输出格式: json, yaml, toml" validate:"oneof=json yaml toml"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Sources: projcfg.DefaultSourceFiles(),
		Format:  "json",
	}
}

// EnvPrefix 工具自身配置的环境变量前缀，例如 PROJCFG_FORMAT。
const EnvPrefix = "PROJCFG_"

// Load 读取工具配置，依次叠加配置文件、环境变量与显式设置的 flags。
//
// flag 名称与 json tag 一致，例如 --expand-env。
func Load(cmd *cli.Command) (*Config, error) {
	cfg, err := projcfg.Load(AppName, DefaultConfig(),
		projcfg.WithStartingPath(cmd.String("start")),
		projcfg.WithSourceFiles("pyproject.toml", "."+AppName+".toml"),
		projcfg.WithMergeConfigs(),
		projcfg.WithEnvPrefix(EnvPrefix),
		projcfg.WithCommand(cmd),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid %s settings: %w", AppName, err)
	}

	return cfg, nil
}

// Usage 返回配置 key 对应字段的 desc 标签，用作 flag 的帮助文本。
func Usage(key string) string {
	typ := reflect.TypeFor[Config]()
	for i := range typ.NumField() {
		field := typ.Field(i)
		if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name == key {
			return field.Tag.Get("desc")
		}
	}

	return ""
}

// Options 转换为 [projcfg.New] 的选项。
func (c *Config) Options() []projcfg.Option {
	opts := []projcfg.Option{
		projcfg.WithStartingPath(c.Start),
		projcfg.WithSourceFiles(c.Sources...),
	}
	if c.Merge {
		opts = append(opts, projcfg.WithMergeConfigs())
	}
	if c.Lenient {
		opts = append(opts, projcfg.WithLenientParsing())
	}
	if c.ExpandEnv {
		opts = append(opts, projcfg.WithEnvExpansion())
	}

	return opts
}
