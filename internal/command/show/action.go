package show

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/internal/command"
)

func action(_ context.Context, cmd *cli.Command) error {
	cfg, settings, err := command.Resolve(cmd)
	if err != nil {
		return err
	}

	return render(cmd.Root().Writer, settings.Format, cfg.Values())
}

// render 按格式输出配置值。
func render(w io.Writer, format string, values map[string]any) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		out, err = json.MarshalIndent(values, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case "yaml":
		out, err = yaml.Marshal(values)
	case "toml":
		out, err = toml.Marshal(values)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	_, err = w.Write(out)

	return err
}
