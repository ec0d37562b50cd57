package projcfg

import (
	"os"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"
)

// collectConfigKeys 递归收集配置结构体的 key 列表。
//
// key 规则同 [StructSchema]，返回叶子路径（如 server.idle-timeout）。
func collectConfigKeys[T any](_ T) []string {
	var keys []string
	collectConfigKeysRecursive(reflect.TypeFor[T](), "", &keys)

	return keys
}

func collectConfigKeysRecursive(typ reflect.Type, prefix string, keys *[]string) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		key, ok := configKey(field)
		if !ok {
			continue
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if isStructType(field.Type) {
			collectConfigKeysRecursive(field.Type, fullKey, keys)

			continue
		}

		*keys = append(*keys, fullKey)
	}
}

// generateEnvBindings 根据配置 key 生成环境变量映射。
//
// 转换规则："." 和 "-" 转为 "_"，转为大写，再加上前缀。
//
// 示例 (前缀 "ACME_")：
//   - server.idle-timeout → ACME_SERVER_IDLE_TIMEOUT
//   - expand-env → ACME_EXPAND_ENV
func generateEnvBindings(prefix string, keys []string) map[string]string {
	replacer := strings.NewReplacer(".", "_", "-", "_")

	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[prefix+strings.ToUpper(replacer.Replace(key))] = key
	}

	return bindings
}

// applyEnv 把非空的绑定环境变量写入 overlay，值保持字符串，由解码阶段转换类型。
func applyEnv[T any](overlay map[string]any, prefix string, defaults T) {
	for envKey, configPath := range generateEnvBindings(prefix, collectConfigKeys(defaults)) {
		if val := os.Getenv(envKey); val != "" {
			setByPath(overlay, configPath, val)
		}
	}
}

// applyFlags 将用户显式设置的 CLI flags 写入 overlay。
//
// flag 名称由配置 key 生成，"." 替换为 "-"，例如 server.url → --server-url。
// 未在命令上定义或未显式设置的 flag 被忽略。
func applyFlags[T any](cmd *cli.Command, overlay map[string]any, _ T) {
	applyFlagsRecursive(cmd, overlay, reflect.TypeFor[T](), "")
}

func applyFlagsRecursive(cmd *cli.Command, overlay map[string]any, typ reflect.Type, prefix string) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		key, ok := configKey(field)
		if !ok {
			continue
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if isStructType(field.Type) {
			applyFlagsRecursive(cmd, overlay, field.Type, fullKey)

			continue
		}

		flag := strings.ReplaceAll(fullKey, ".", "-")
		if !cmd.IsSet(flag) {
			continue
		}

		setFlagValue(cmd, overlay, fullKey, flag, field.Type)
	}
}

// setFlagValue 按字段类型读取 CLI 值并写入 overlay。
func setFlagValue(cmd *cli.Command, overlay map[string]any, configPath, flag string, fieldType reflect.Type) {
	switch fieldType {
	case durationType:
		setByPath(overlay, configPath, cmd.Duration(flag))

		return
	case timeType:
		setByPath(overlay, configPath, cmd.Timestamp(flag))

		return
	}

	switch fieldType.Kind() {
	case reflect.String:
		setByPath(overlay, configPath, cmd.String(flag))
	case reflect.Bool:
		setByPath(overlay, configPath, cmd.Bool(flag))

	case reflect.Int:
		setByPath(overlay, configPath, cmd.Int(flag))
	case reflect.Int8:
		setByPath(overlay, configPath, cmd.Int8(flag))
	case reflect.Int16:
		setByPath(overlay, configPath, cmd.Int16(flag))
	case reflect.Int32:
		setByPath(overlay, configPath, cmd.Int32(flag))
	case reflect.Int64:
		setByPath(overlay, configPath, cmd.Int64(flag))

	case reflect.Uint:
		setByPath(overlay, configPath, cmd.Uint(flag))
	case reflect.Uint16:
		setByPath(overlay, configPath, cmd.Uint16(flag))
	case reflect.Uint32:
		setByPath(overlay, configPath, cmd.Uint32(flag))
	case reflect.Uint64:
		setByPath(overlay, configPath, cmd.Uint64(flag))

	case reflect.Float32:
		setByPath(overlay, configPath, cmd.Float32(flag))
	case reflect.Float64:
		setByPath(overlay, configPath, cmd.Float64(flag))

	case reflect.Slice:
		setSliceFlagValue(cmd, overlay, configPath, flag, fieldType)

	case reflect.Map:
		if fieldType.Key().Kind() == reflect.String && fieldType.Elem().Kind() == reflect.String {
			setByPath(overlay, configPath, cmd.StringMap(flag))
		}

	default:
		// 不支持的类型，忽略
	}
}

func setSliceFlagValue(cmd *cli.Command, overlay map[string]any, configPath, flag string, fieldType reflect.Type) {
	switch fieldType.Elem().Kind() {
	case reflect.String:
		setByPath(overlay, configPath, cmd.StringSlice(flag))
	case reflect.Int:
		setByPath(overlay, configPath, cmd.IntSlice(flag))
	case reflect.Int64:
		setByPath(overlay, configPath, cmd.Int64Slice(flag))
	case reflect.Float64:
		setByPath(overlay, configPath, cmd.Float64Slice(flag))
	default:
		// 不支持的切片元素类型，忽略
	}
}

// setByPath 按点分隔路径写入值，缺失或非 map 的中间节点会被替换为新 map。
func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value

			return
		}

		next, ok := current[part].(map[string]any)
		if !ok || next == nil {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}
