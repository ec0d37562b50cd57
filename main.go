package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command/find"
	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command/paths"
	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command/show"
	"github.com/lwmacct/251207-go-pkg-projcfg/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  config.AppName,
		Usage: "项目配置查找与解析工具",
		Commands: []*cli.Command{
			show.Command,
			paths.Command,
			find.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
