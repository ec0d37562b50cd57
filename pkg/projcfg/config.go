package projcfg

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// DefaultSourceFiles 返回默认的配置文件列表。
func DefaultSourceFiles() []string {
	return []string{"pyproject.toml"}
}

// NewDefaultRegistry 返回注册了内置格式的 [Registry]。
//
// 注册项：
//   - pyproject.toml - 只读取 [tool.<name>] 段
//   - .toml - 整个文件
//   - .ini / .cfg - INI
//   - .yaml / .yml - YAML
//   - .json - JSON
//
// lenient 为 true 时 TOML/YAML/JSON 解码失败返回空 map，而不是 [MalformedSourceError]。
func NewDefaultRegistry(name string, lenient bool) *Registry {
	pyproject := NewPyprojectParser(name)
	pyproject.Lenient = lenient

	r := NewRegistry()
	r.Register(".toml", pyproject, "pyproject")
	r.Register(".toml", TOMLParser{Lenient: lenient})
	r.Register(".ini", INIParser{})
	r.Register(".cfg", INIParser{})
	r.Register(".yaml", YAMLParser{Lenient: lenient})
	r.Register(".yml", YAMLParser{Lenient: lenient})
	r.Register(".json", JSONParser{Lenient: lenient})

	return r
}

// Config 是解析完成的项目配置。
//
// 构造时完成发现、解析与合并；之后只有 [Config.Validate] 与 [Config.SetValues] 会整体替换配置值。
// Config 不是并发安全的：读操作可以并发，但不能与 Validate/SetValues 同时进行。
type Config struct {
	name            string
	sourceFiles     []string
	startingPath    string
	mergeConfigs    bool
	schema          Schema
	values          map[string]any
	discoveredPaths []string
	service         *Service
}

// New 查找并解析 name 对应的项目配置。
//
// 找不到任何配置文件不是错误，此时 [Config.Values] 为空 map。
// 格式错误是否返回 error 取决于 parser 的策略（见 [WithLenientParsing]）。
//
// 示例：
//
//	cfg, err := projcfg.New("acme",
//	    projcfg.WithSourceFiles("pyproject.toml", ".acme.toml"),
//	    projcfg.WithMergeConfigs(),
//	)
func New(name string, opts ...Option) (*Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	sourceFiles := o.sourceFiles
	if len(sourceFiles) == 0 {
		sourceFiles = DefaultSourceFiles()
	}
	fs := o.fs
	if fs == nil {
		fs = defaultFilesystem
	}

	registry := NewDefaultRegistry(name, o.lenient)
	for _, reg := range o.parsers {
		registry.Register(reg.suffix, reg.parser, reg.stem...)
	}

	service := NewService(fs, registry, SchemaValidator{})

	var discovered []string
	for _, path := range service.FindConfigs(sourceFiles, o.startingPath) {
		if !registry.Supports(path) {
			slog.Debug("Skipping config file with unsupported format", "path", path)

			continue
		}
		discovered = append(discovered, path)
	}

	values, err := service.ConfigValues(discovered, o.mergeConfigs)
	if err != nil {
		return nil, fmt.Errorf("load %s config: %w", name, err)
	}

	if o.expandEnv {
		if _, err := ExpandValues(values, os.LookupEnv); err != nil {
			return nil, fmt.Errorf("load %s config: %w", name, err)
		}
	}

	if len(discovered) == 0 {
		slog.Debug("No config file found", "name", name, "sources", sourceFiles)
	}

	return &Config{
		name:            name,
		sourceFiles:     sourceFiles,
		startingPath:    o.startingPath,
		mergeConfigs:    o.mergeConfigs,
		schema:          o.schema,
		values:          values,
		discoveredPaths: discovered,
		service:         service,
	}, nil
}

// String 返回便于调试的描述。
func (c *Config) String() string {
	return fmt.Sprintf("<Config %s path:%v>", c.name, c.Path())
}

// Name 返回项目名称。
func (c *Config) Name() string {
	return c.name
}

// SourceFiles 返回请求查找的配置文件列表。
func (c *Config) SourceFiles() []string {
	return slices.Clone(c.sourceFiles)
}

// StartingPath 返回搜索起点，空字符串表示当前工作目录。
func (c *Config) StartingPath() string {
	return c.startingPath
}

// Values 返回当前配置值。
func (c *Config) Values() map[string]any {
	return c.values
}

// SetValues 整体替换配置值，例如在测试中注入固定数据。
func (c *Config) SetValues(values map[string]any) {
	if values == nil {
		values = map[string]any{}
	}
	c.values = values
}

// ToMap 与 [Config.Values] 相同。
func (c *Config) ToMap() map[string]any {
	return c.values
}

// DiscoveredPaths 返回实际找到并参与解析候选的文件，顺序与请求列表一致。
func (c *Config) DiscoveredPaths() []string {
	return slices.Clone(c.discoveredPaths)
}

// Path 返回配置值的来源。
//
//   - 未找到任何文件：nil
//   - 未开启合并：仅包含第一个找到的文件
//   - 开启合并：全部找到的文件，同 [Config.DiscoveredPaths]
func (c *Config) Path() []string {
	if len(c.discoveredPaths) == 0 {
		return nil
	}
	if !c.mergeConfigs {
		return slices.Clone(c.discoveredPaths[:1])
	}

	return slices.Clone(c.discoveredPaths)
}

// Schema 返回绑定的 schema，可能为 nil。
func (c *Config) Schema() Schema {
	return c.schema
}

// SetSchema 绑定默认 schema。
func (c *Config) SetSchema(schema Schema) {
	c.schema = schema
}

// Get 按点分隔路径读取配置值，例如 "server.port"。
//
// 优先匹配包含点号的完整 key，其次逐级下钻。
func (c *Config) Get(key string) (any, bool) {
	if value, ok := c.values[key]; ok {
		return value, true
	}

	var current any = c.values
	for part := range strings.SplitSeq(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}

	return current, true
}

// Unmarshal 将当前配置值解码到 out（需为指针），key 由 json tag 定义。
//
// 与 [StructSchema] 使用相同的弱类型解码规则，但不做标签校验。
func (c *Config) Unmarshal(out any) error {
	if err := decodeConfigMap(c.values, out, false); err != nil {
		return fmt.Errorf("unmarshal %s config: %w", c.name, err)
	}

	return nil
}

// Validate 用 schema 校验当前配置值。
//
// schema 优先级：[ValidateWith] 参数 > 构造时的 [WithSchema] 或 [Config.SetSchema]；
// 两者都没有时返回 [ErrNoSchema]。
//
// 默认情况下，校验成功后用 schema 的输出（补全默认值、类型转换后）替换当前配置值。
// 传入 [KeepValues] 时只返回校验结果，不修改当前配置值。
// 校验失败时返回 [SchemaRejectedError]，当前配置值保持不变。
func (c *Config) Validate(opts ...ValidateOption) (map[string]any, error) {
	o := &validateOptions{useSchemaValues: true}
	for _, opt := range opts {
		opt(o)
	}

	schema := o.schema
	if schema == nil {
		schema = c.schema
	}
	if schema == nil {
		return nil, ErrNoSchema
	}

	validated, err := c.service.ValidateConfig(c.values, schema)
	if err != nil {
		return nil, err
	}

	if o.useSchemaValues {
		c.values = validated
	}

	return validated, nil
}

// Load 解析 name 对应的项目配置，并以 defaults 为默认值构造 T。
//
// 优先级 (从低到高)：
//  1. 默认值 - defaults
//  2. 配置文件 - 同 [New]
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]，仅当用户显式设置时
//
// 校验失败返回 [SchemaRejectedError]。
//
// 示例：
//
//	cfg, err := projcfg.Load("acme", DefaultSettings(),
//	    projcfg.WithSourceFiles("pyproject.toml", ".acme.toml"),
//	    projcfg.WithMergeConfigs(),
//	)
func Load[T any](name string, defaults T, opts ...Option) (*T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := New(name, opts...)
	if err != nil {
		return nil, err
	}

	// 深拷贝，避免覆盖层写入 cfg 持有的 map
	values, err := DeepMerge(map[string]any{}, cfg.Values())
	if err != nil {
		return nil, fmt.Errorf("load %s config: %w", name, err)
	}

	overlay := map[string]any{}
	if o.envPrefix != "" {
		applyEnv(overlay, o.envPrefix, defaults)
	}
	if o.cmd != nil {
		applyFlags(o.cmd, overlay, defaults)
	}
	if len(overlay) > 0 {
		slog.Debug("Applying env and flag overrides", "name", name, "keys", len(overlay))
		overlayMaps(values, overlay)
	}

	value, err := NewStructSchema(defaults).Build(values)
	if err != nil {
		return nil, fmt.Errorf("validate %s config: %w", name, &SchemaRejectedError{Err: err})
	}

	return &value, nil
}

// MustLoad 调用 [Load] 并在失败时 panic，适合启动阶段。
func MustLoad[T any](name string, defaults T, opts ...Option) *T {
	cfg, err := Load(name, defaults, opts...)
	if err != nil {
		panic(fmt.Sprintf("projcfg: failed to load config: %v", err))
	}

	return cfg
}
