// Package show 提供输出解析结果的命令。
package show

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command"
	"github.com/lwmacct/251207-go-pkg-projcfg/internal/config"
)

// Command 输出合并后的配置
var Command = &cli.Command{
	Name:   "show",
	Usage:  "输出解析后的项目配置",
	Action: action,
	Flags: append(command.ResolveFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   command.Defaults.Format,
			Usage:   config.Usage("format"),
		},
	),
}
