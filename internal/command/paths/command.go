// Package paths 提供列出已发现配置文件的命令。
package paths

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command"
)

// Command 按查找顺序输出找到的配置文件
var Command = &cli.Command{
	Name:   "paths",
	Usage:  "列出找到的配置文件",
	Action: action,
	Flags:  command.ResolveFlags(),
}

func action(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := command.Resolve(cmd)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	for _, p := range cfg.DiscoveredPaths() {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}

	return nil
}
