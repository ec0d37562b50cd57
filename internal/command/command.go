// Package command 提供 projcfg 子命令共用的 flags 与配置解析。
package command

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/internal/config"
	"github.com/lwmacct/251207-go-pkg-projcfg/pkg/projcfg"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// ResolveFlags 返回解析项目配置所需的 flags，每次调用返回新的实例。
//
// flag 名称与 [config.Config] 的 json tag 一致，显式设置时覆盖配置文件。
func ResolveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   config.Usage("name"),
		},
		&cli.StringSliceFlag{
			Name:    "sources",
			Aliases: []string{"source", "s"},
			Value:   Defaults.Sources,
			Usage:   config.Usage("sources"),
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: config.Usage("start"),
		},
		&cli.BoolFlag{
			Name:  "merge",
			Usage: config.Usage("merge"),
		},
		&cli.BoolFlag{
			Name:  "lenient",
			Usage: config.Usage("lenient"),
		},
		&cli.BoolFlag{
			Name:  "expand-env",
			Usage: config.Usage("expand-env"),
		},
	}
}

// Resolve 读取工具配置后解析目标项目的配置。
func Resolve(cmd *cli.Command) (*projcfg.Config, *config.Config, error) {
	settings, err := config.Load(cmd)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := projcfg.New(settings.Name, settings.Options()...)
	if err != nil {
		return nil, nil, err
	}

	return cfg, settings, nil
}
