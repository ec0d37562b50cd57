package projcfg

import "github.com/urfave/cli/v3"

// options 配置解析选项。
type options struct {
	startingPath string // 向上搜索的起点，空字符串表示当前工作目录
	sourceFiles  []string
	schema       Schema
	mergeConfigs bool
	fs           Filesystem
	parsers      []parserRegistration // 在默认 parser 之后注册，可覆盖默认项
	lenient      bool                 // TOML/YAML/JSON 解码失败时视为空 map
	expandEnv    bool
	envPrefix    string       // 仅 [Load] 使用
	cmd          *cli.Command // 仅 [Load] 使用
}

type parserRegistration struct {
	suffix string
	parser Parser
	stem   []string
}

// Option 配置解析选项函数。
type Option func(*options)

// WithStartingPath 设置向上搜索配置文件的起始目录，默认为当前工作目录。
func WithStartingPath(path string) Option {
	return func(o *options) {
		o.startingPath = path
	}
}

// WithSourceFiles 设置要查找的配置文件，默认为 [DefaultSourceFiles]。
//
// 条目可以是文件名（向上搜索）或绝对路径（仅检查是否存在）。
// 顺序即合并顺序：开启 [WithMergeConfigs] 时后面的文件优先，否则只使用第一个找到的文件。
//
// 示例：
//
//	projcfg.New("acme",
//	    projcfg.WithSourceFiles("pyproject.toml", ".acme.toml", "~/.config/acme.ini"),
//	    projcfg.WithMergeConfigs(),
//	)
func WithSourceFiles(files ...string) Option {
	return func(o *options) {
		o.sourceFiles = files
	}
}

// WithSchema 绑定默认 schema，供 [Config.Validate] 使用。
func WithSchema(schema Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithMergeConfigs 合并所有找到的配置文件，而不是只使用第一个。
func WithMergeConfigs() Option {
	return func(o *options) {
		o.mergeConfigs = true
	}
}

// WithFilesystem 替换文件系统实现，默认使用进程内共享的 [DiskFilesystem]。
func WithFilesystem(fs Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithParser 注册额外的 parser，规则同 [Registry.Register]。
//
// 与默认注册项 key 相同时会覆盖默认 parser。
func WithParser(suffix string, parser Parser, stem ...string) Option {
	return func(o *options) {
		o.parsers = append(o.parsers, parserRegistration{suffix: suffix, parser: parser, stem: stem})
	}
}

// WithLenientParsing 让默认的 TOML/YAML/JSON parser 在解码失败时返回空 map。
//
// 默认是严格模式，格式错误会以 [MalformedSourceError] 返回。INI 始终是宽松的。
func WithLenientParsing() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// WithEnvExpansion 在合并后对所有字符串值执行环境变量展开（见 [ExpandValues]）。
func WithEnvExpansion() Option {
	return func(o *options) {
		o.expandEnv = true
	}
}

// WithEnvPrefix 让 [Load] 读取带前缀的环境变量，优先级高于配置文件。
//
// 变量名由配置 key 生成："." 和 "-" 转为 "_" 并转为大写，例如前缀 "ACME_" 时
// server.idle-timeout 对应 ACME_SERVER_IDLE_TIMEOUT。空值的变量被忽略。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithCommand 让 [Load] 应用用户显式设置的 CLI flags，优先级最高。
//
// flag 名称为配置 key 中的 "." 替换为 "-"，例如 server.url → --server-url。
//
// 示例：
//
//	settings, err := projcfg.Load("acme", DefaultSettings(),
//	    projcfg.WithEnvPrefix("ACME_"),
//	    projcfg.WithCommand(cmd),
//	)
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// validateOptions 校验选项。
type validateOptions struct {
	schema          Schema
	useSchemaValues bool
}

// ValidateOption 校验选项函数。
type ValidateOption func(*validateOptions)

// ValidateWith 指定本次校验使用的 schema，优先于构造时绑定的 schema。
func ValidateWith(schema Schema) ValidateOption {
	return func(o *validateOptions) {
		o.schema = schema
	}
}

// KeepValues 只做校验，不用 schema 的输出替换当前配置值。
//
// schema 构造仍会完整执行，校验失败依然返回错误。
func KeepValues() ValidateOption {
	return func(o *validateOptions) {
		o.useSchemaValues = false
	}
}
