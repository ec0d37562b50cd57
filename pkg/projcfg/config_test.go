package projcfg_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-projcfg/pkg/projcfg"
)

const pyprojectHello = `
[tool.acme]
hello = true
`

func validatedSchema() projcfg.Schema {
	return projcfg.SchemaFunc(func(map[string]any) (projcfg.Dumper, error) {
		return projcfg.MapInstance{"key": "validated"}, nil
	})
}

func TestNew_DefaultsToPyproject(t *testing.T) {
	dir := t.TempDir()
	fp := writeFile(t, filepath.Join(dir, "pyproject.toml"), pyprojectHello)

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"hello": true}, cfg.Values())
	assert.Equal(t, cfg.Values(), cfg.ToMap())
	assert.Equal(t, []string{fp}, cfg.DiscoveredPaths())
	assert.Equal(t, []string{fp}, cfg.Path())
	assert.Equal(t, []string{"pyproject.toml"}, cfg.SourceFiles())
	assert.Equal(t, dir, cfg.StartingPath())
	assert.Equal(t, "acme", cfg.Name())
}

func TestNew_NothingFound(t *testing.T) {
	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(t.TempDir()),
		projcfg.WithSourceFiles("projcfg-definitely-missing-7c1e.toml"),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, cfg.Values())
	assert.Nil(t, cfg.Path())
	assert.Empty(t, cfg.DiscoveredPaths())
	assert.Equal(t, "<Config acme path:[]>", cfg.String())
}

func TestNew_MergeConfigs(t *testing.T) {
	dir := t.TempDir()
	pyproject := writeFile(t, filepath.Join(dir, "pyproject.toml"), pyprojectHello)
	extra := writeFile(t, filepath.Join(dir, "extra.toml"), "goodbye = true\n")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("pyproject.toml", "extra.toml"),
		projcfg.WithMergeConfigs(),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"hello": true, "goodbye": true}, cfg.Values())
	assert.Equal(t, []string{pyproject, extra}, cfg.DiscoveredPaths())
	assert.Equal(t, []string{pyproject, extra}, cfg.Path())
}

func TestNew_FirstSourceOnlyWithoutMerge(t *testing.T) {
	dir := t.TempDir()
	pyproject := writeFile(t, filepath.Join(dir, "pyproject.toml"), pyprojectHello)
	extra := writeFile(t, filepath.Join(dir, "extra.toml"), "this is [not valid toml")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("pyproject.toml", "extra.toml"),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"hello": true}, cfg.Values())
	assert.Equal(t, []string{pyproject, extra}, cfg.DiscoveredPaths())
	assert.Equal(t, []string{pyproject}, cfg.Path())
}

func TestNew_LaterSourcesWin(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	writeFile(t, filepath.Join(root, "base.toml"), `
[server]
host = "base"
port = 1
`)
	writeFile(t, filepath.Join(project, "override.yaml"), "server:\n  port: 2\n")
	writeFile(t, filepath.Join(project, "setup.cfg"), "[lint]\nmax-line = 88\n")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(project),
		projcfg.WithSourceFiles("base.toml", "override.yaml", "setup.cfg"),
		projcfg.WithMergeConfigs(),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"server": map[string]any{"host": "base", "port": 2},
		"lint":   map[string]any{"max-line": "88"},
	}, cfg.Values())
}

func TestNew_AbsoluteSourcePath(t *testing.T) {
	dir := t.TempDir()
	elsewhere := writeFile(t, filepath.Join(t.TempDir(), "global.ini"), "[acme]\ncolor = blue\n")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles(elsewhere, filepath.Join(dir, "missing.toml")),
		projcfg.WithMergeConfigs(),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{elsewhere}, cfg.DiscoveredPaths())
	assert.Equal(t, map[string]any{"acme": map[string]any{"color": "blue"}}, cfg.Values())
}

func TestNew_MalformedPolicy(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "pyproject.toml"), "[tool.acme\nhello = ")

	_, err := projcfg.New("acme", projcfg.WithStartingPath(dir))
	var malformed *projcfg.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, bad, malformed.Path)

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir), projcfg.WithLenientParsing())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, cfg.Values())
	assert.Equal(t, []string{bad}, cfg.DiscoveredPaths())
}

func TestNew_MergeConflict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.toml"), `server = "off"`)
	writeFile(t, filepath.Join(dir, "b.toml"), "[server]\nport = 1\n")

	_, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("a.toml", "b.toml"),
		projcfg.WithMergeConfigs(),
	)
	var conflict *projcfg.MergeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "server", conflict.Key)
}

func TestNew_SkipsUnregisteredFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	toml := writeFile(t, filepath.Join(dir, "acme.toml"), "a = 1")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("notes.txt", "acme.toml"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{toml}, cfg.DiscoveredPaths())
	assert.Equal(t, map[string]any{"a": int64(1)}, cfg.Values())
}

func TestNew_WithParser(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, filepath.Join(dir, "notes.txt"), "hello")

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("notes.txt"),
		projcfg.WithParser(".txt", projcfg.ParserFunc(func(content []byte) (map[string]any, error) {
			return map[string]any{"text": string(content)}, nil
		})),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{notes}, cfg.DiscoveredPaths())
	assert.Equal(t, map[string]any{"text": "hello"}, cfg.Values())
}

func TestNew_WithFilesystem(t *testing.T) {
	fsys := &fakeFilesystem{}

	cfg, err := projcfg.New("acme",
		projcfg.WithFilesystem(fsys),
		projcfg.WithSourceFiles("not.exists", "app.json"),
		projcfg.WithLenientParsing(),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"/path/to/app.json"}, cfg.DiscoveredPaths())
	assert.Equal(t, []string{"/path/to/app.json"}, fsys.reads)
	assert.Equal(t, map[string]any{}, cfg.Values())
}

func TestNew_EnvExpansion(t *testing.T) {
	t.Setenv("ACME_TOKEN", "s3cret")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
token = "${ACME_TOKEN}"
region = "${ACME_REGION:-eu-west-1}"
`)

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir), projcfg.WithEnvExpansion())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": "s3cret", "region": "eu-west-1"}, cfg.Values())

	raw, err := projcfg.New("acme", projcfg.WithStartingPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "${ACME_TOKEN}", raw.Values()["token"])
}

func TestConfig_SetValues(t *testing.T) {
	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(t.TempDir()))
	require.NoError(t, err)

	cfg.SetValues(map[string]any{"hello": true})
	assert.Equal(t, map[string]any{"hello": true}, cfg.Values())

	cfg.SetValues(nil)
	assert.Equal(t, map[string]any{}, cfg.Values())
}

func TestConfig_Get(t *testing.T) {
	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(t.TempDir()))
	require.NoError(t, err)
	cfg.SetValues(map[string]any{
		"server":     map[string]any{"port": 8080},
		"dotted.key": "literal",
		"plain":      "x",
	})

	tests := []struct {
		key    string
		want   any
		wantOK bool
	}{
		{key: "server.port", want: 8080, wantOK: true},
		{key: "server", want: map[string]any{"port": 8080}, wantOK: true},
		{key: "dotted.key", want: "literal", wantOK: true},
		{key: "plain", want: "x", wantOK: true},
		{key: "plain.child"},
		{key: "server.host"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := cfg.Get(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Unmarshal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
name = "demo"
timeout = "45s"

[tool.acme.server]
port = 9000
`)

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir))
	require.NoError(t, err)

	var settings struct {
		Name    string        `json:"name"`
		Timeout time.Duration `json:"timeout"`
		Server  struct {
			Port int `json:"port"`
		} `json:"server"`
	}
	require.NoError(t, cfg.Unmarshal(&settings))

	assert.Equal(t, "demo", settings.Name)
	assert.Equal(t, 45*time.Second, settings.Timeout)
	assert.Equal(t, 9000, settings.Server.Port)
}

func TestConfig_Schema(t *testing.T) {
	first := validatedSchema()
	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(t.TempDir()), projcfg.WithSchema(first))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Schema())

	second := projcfg.MapInstance{}
	cfg.SetSchema(projcfg.SchemaFunc(func(map[string]any) (projcfg.Dumper, error) { return second, nil }))

	got, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got)
}

func TestConfig_Validate_NoSchema(t *testing.T) {
	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(t.TempDir()))
	require.NoError(t, err)

	_, err = cfg.Validate()
	require.ErrorIs(t, err, projcfg.ErrNoSchema)
}

func TestConfig_Validate_SchemaValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), pyprojectHello)

	tests := []struct {
		name       string
		opts       []projcfg.ValidateOption
		wantValues map[string]any
	}{
		{
			name:       "uses schema values by default",
			wantValues: map[string]any{"key": "validated"},
		},
		{
			name:       "keeps original values",
			opts:       []projcfg.ValidateOption{projcfg.KeepValues()},
			wantValues: map[string]any{"hello": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir), projcfg.WithSchema(validatedSchema()))
			require.NoError(t, err)

			got, err := cfg.Validate(tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"key": "validated"}, got)
			assert.Equal(t, tt.wantValues, cfg.Values())
		})
	}
}

func TestConfig_Validate_ArgumentSchemaTakesPrecedence(t *testing.T) {
	bound := projcfg.SchemaFunc(func(map[string]any) (projcfg.Dumper, error) {
		return projcfg.MapInstance{"from": "bound"}, nil
	})
	argument := projcfg.SchemaFunc(func(map[string]any) (projcfg.Dumper, error) {
		return projcfg.MapInstance{"from": "argument"}, nil
	})

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(t.TempDir()), projcfg.WithSchema(bound))
	require.NoError(t, err)

	got, err := cfg.Validate(projcfg.ValidateWith(argument))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"from": "argument"}, got)

	got, err = cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"from": "bound"}, got)
}

func TestConfig_Validate_Rejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
foo = "bar"
`)

	type schema struct {
		Foo int `json:"foo"`
	}

	for _, opts := range [][]projcfg.ValidateOption{nil, {projcfg.KeepValues()}} {
		cfg, err := projcfg.New("acme",
			projcfg.WithStartingPath(dir),
			projcfg.WithSchema(projcfg.NewStructSchema(schema{})),
		)
		require.NoError(t, err)

		_, err = cfg.Validate(opts...)
		var rejected *projcfg.SchemaRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, map[string]any{"foo": "bar"}, cfg.Values())
	}
}

func TestConfig_Validate_CoercesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
name = 1
`)

	cfg, err := projcfg.New("acme",
		projcfg.WithStartingPath(dir),
		projcfg.WithSchema(projcfg.NewStructSchema(defaultAppSettings())),
	)
	require.NoError(t, err)

	first, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, "1", first["name"])
	assert.Equal(t, "dev", first["mode"])

	second, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
name = "acme"
`)
	writeFile(t, filepath.Join(dir, ".acme.toml"), `
[server]
port = 9090
`)

	settings, err := projcfg.Load("acme", defaultAppSettings(),
		projcfg.WithStartingPath(dir),
		projcfg.WithSourceFiles("pyproject.toml", ".acme.toml"),
		projcfg.WithMergeConfigs(),
	)
	require.NoError(t, err)

	assert.Equal(t, "acme", settings.Name)
	assert.Equal(t, "dev", settings.Mode)
	assert.Equal(t, "localhost", settings.Server.Host)
	assert.Equal(t, 9090, settings.Server.Port)
}

func TestLoad_Rejected(t *testing.T) {
	_, err := projcfg.Load("acme", defaultAppSettings(), projcfg.WithStartingPath(t.TempDir()))

	var rejected *projcfg.SchemaRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.False(t, errors.Is(err, projcfg.ErrNoSchema))
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		projcfg.MustLoad("acme", defaultAppSettings(), projcfg.WithStartingPath(t.TempDir()))
	})
}

func TestConfig_Validate_UntaggedSchemaKeepsValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
port = 8080
name = "x"
`)

	cfg, err := projcfg.New("acme", projcfg.WithStartingPath(dir))
	require.NoError(t, err)

	got, err := cfg.Validate(projcfg.ValidateWith(projcfg.NewStructSchema(plainSettings{})))
	require.NoError(t, err)

	want := map[string]any{"Port": 8080, "Name": "x", "Mode": ""}
	assert.Equal(t, want, got)
	assert.Equal(t, want, cfg.Values())
}

func TestLoad_EnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.acme]
name = "acme"

[tool.acme.server]
port = 1
`)
	t.Setenv("ACME_MODE", "prod")
	t.Setenv("ACME_SERVER_HOST", "env.example")
	t.Setenv("ACME_TAGS", "a")

	var (
		settings *appSettings
		loadErr  error
	)
	cmd := &cli.Command{
		Name: "acme",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode"},
			&cli.IntFlag{Name: "server-port"},
			&cli.StringFlag{Name: "server-host", Value: "flag-default"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			settings, loadErr = projcfg.Load("acme", defaultAppSettings(),
				projcfg.WithStartingPath(dir),
				projcfg.WithEnvPrefix("ACME_"),
				projcfg.WithCommand(cmd),
			)

			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"acme", "--mode", "dev", "--server-port", "7070"}))
	require.NoError(t, loadErr)

	assert.Equal(t, "acme", settings.Name, "文件")
	assert.Equal(t, "dev", settings.Mode, "flag 优先于环境变量")
	assert.Equal(t, []string{"a"}, settings.Tags, "环境变量")
	assert.Equal(t, "env.example", settings.Server.Host, "未显式设置的 flag 不覆盖")
	assert.Equal(t, 7070, settings.Server.Port, "flag 优先于文件")
	assert.Equal(t, 30*time.Second, settings.Server.Timeout, "默认值")
}
