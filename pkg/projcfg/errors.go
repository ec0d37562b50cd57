package projcfg

import (
	"errors"
	"fmt"
)

// ErrNoSchema 表示调用 [Config.Validate] 时既没有参数 schema，也没有绑定 schema。
var ErrNoSchema = errors.New("projcfg: no schema provided for validation")

// UnsupportedConfigError 表示注册表中没有任何 parser 能处理该文件。
type UnsupportedConfigError struct {
	Path string
}

// Error 实现 error 接口。
func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("projcfg: no parser registered for %s", e.Path)
}

// MalformedSourceError 表示严格模式下配置文件无法解码。
type MalformedSourceError struct {
	Path   string
	Format string
	Err    error
}

// Error 实现 error 接口。
func (e *MalformedSourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("projcfg: invalid %s: %v", e.Format, e.Err)
	}

	return fmt.Sprintf("projcfg: invalid %s in %s: %v", e.Format, e.Path, e.Err)
}

// Unwrap 返回底层解码错误。
func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// MergeConflictError 表示尝试把 mapping 合并到非 mapping 的值之上。
//
// Key 为点分隔的完整路径，例如 "server.tls"。
type MergeConflictError struct {
	Key      string
	Existing any
}

// Error 实现 error 接口。
func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("projcfg: cannot merge mapping into %T at key %q", e.Existing, e.Key)
}

// SchemaRejectedError 包装 schema 构造失败时返回的原始诊断信息。
//
// 可以通过 errors.As 取出 schema 自身的错误类型（例如 validator.ValidationErrors）。
type SchemaRejectedError struct {
	Err error
}

// Error 实现 error 接口。
func (e *SchemaRejectedError) Error() string {
	return fmt.Sprintf("projcfg: config rejected by schema: %v", e.Err)
}

// Unwrap 返回 schema 的原始错误。
func (e *SchemaRejectedError) Unwrap() error {
	return e.Err
}
