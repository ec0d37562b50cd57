// Package find 提供从起始目录向上查找单个文件的命令。
package find

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/pkg/projcfg"
)

// Command 向上查找文件并输出其绝对路径，未找到时以非零状态退出
var Command = &cli.Command{
	Name:      "find",
	Usage:     "从起始目录向上查找文件",
	ArgsUsage: "<file>",
	Action:    action,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "向上搜索的起始目录，默认当前目录",
		},
	},
}

func action(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return cli.Exit("缺少要查找的文件名", 2)
	}

	found, ok := projcfg.NewDiskFilesystem().FindFile(name, cmd.String("start"))
	if !ok {
		return cli.Exit(fmt.Sprintf("%s: not found", name), 1)
	}

	_, err := fmt.Fprintln(cmd.Root().Writer, found)

	return err
}
