package projcfg

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// validate 在所有 StructSchema 间共享，validator.Validate 自带结构体缓存且并发安全。
var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 诊断信息使用配置 key 而不是 Go 字段名
	v.RegisterTagNameFunc(configTagName)

	return v
}

// StructSchema 以 Go 结构体作为 schema。
//
// 构造流程：
//  1. 将 Defaults 转为 map，并用配置值逐层覆盖
//  2. 通过 mapstructure 解码为 T（弱类型输入，例如 1 → "1"、"30s" → time.Duration）
//  3. 按 `validate:"..."` 标签校验
//
// 配置 key 由 json tag 定义，与 [Config.Unmarshal] 一致。
//
// 示例：
//
//	type Settings struct {
//	    Port int    `json:"port" validate:"gt=0,lt=65536"`
//	    Mode string `json:"mode" validate:"oneof=dev prod"`
//	}
//
//	schema := projcfg.NewStructSchema(Settings{Port: 8080, Mode: "dev"})
//	values, err := cfg.Validate(projcfg.ValidateWith(schema))
type StructSchema[T any] struct {
	Defaults T
	// ErrorUnused 为 true 时，配置中存在结构体未声明的 key 会导致校验失败。
	ErrorUnused bool
}

// NewStructSchema 创建以 defaults 为默认值的 StructSchema。
func NewStructSchema[T any](defaults T) *StructSchema[T] {
	return &StructSchema[T]{Defaults: defaults}
}

// StructInstance 是 [StructSchema] 构造出的实例。
type StructInstance[T any] struct {
	Value T
}

// Dump 实现 [Dumper] 接口，key 规则与解码一致：json tag 优先，没有 tag 时使用字段名。
//
// T 为 map 时返回其内容的副本。
func (i *StructInstance[T]) Dump() map[string]any {
	return structToMap(i.Value)
}

// Construct 实现 [Schema] 接口。
func (s *StructSchema[T]) Construct(values map[string]any) (Dumper, error) {
	cfg, err := s.Build(values)
	if err != nil {
		return nil, err
	}

	return &StructInstance[T]{Value: cfg}, nil
}

// Build 与 Construct 相同，但直接返回类型化的结果。
func (s *StructSchema[T]) Build(values map[string]any) (T, error) {
	data := structToMap(s.Defaults)
	overlayMaps(data, values)

	var cfg T
	if err := decodeConfigMap(data, &cfg, s.ErrorUnused); err != nil {
		return cfg, err
	}

	if isStructType(reflect.TypeFor[T]()) {
		if err := validate.Struct(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func configTagName(field reflect.StructField) string {
	return parseTagName(field.Tag.Get("json"))
}

func parseTagName(tag string) string {
	if tag == "" {
		return ""
	}
	parts := strings.Split(tag, ",")
	if len(parts) == 0 || parts[0] == "" || parts[0] == "-" {
		return ""
	}

	return parts[0]
}

func isStructType(typ reflect.Type) bool {
	if typ == nil {
		return false
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.Kind() == reflect.Struct && typ != durationType && typ != timeType
}

// configKey 返回字段对应的配置 key，与 mapstructure 的匹配规则一致。
//
// json:"-" 的字段被跳过；没有 tag 名时使用 Go 字段名。
func configKey(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name := parseTagName(tag); name != "" {
		return name, true
	}

	return field.Name, true
}

// structToMap 把结构体或 map 转换为 map[string]any，其他类型返回空 map。
func structToMap(cfg any) map[string]any {
	val := reflect.ValueOf(cfg)
	if !val.IsValid() {
		return map[string]any{}
	}

	out, ok := valueToAny(val, val.Type()).(map[string]any)
	if !ok || out == nil {
		return map[string]any{}
	}

	return out
}

func structValueToMap(val reflect.Value, typ reflect.Type) map[string]any {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return map[string]any{}
		}
		val = val.Elem()
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return map[string]any{}
	}

	out := make(map[string]any)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}

		key, ok := configKey(field)
		if !ok {
			continue
		}

		out[key] = valueToAny(val.Field(i), field.Type)
	}

	return out
}

func valueToAny(val reflect.Value, typ reflect.Type) any {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
		typ = typ.Elem()
	}

	if isStructType(typ) {
		return structValueToMap(val, typ)
	}

	switch val.Kind() {
	case reflect.Slice:
		if val.IsNil() {
			return nil
		}
		out := make([]any, val.Len())
		for i := range val.Len() {
			elem := val.Index(i)
			out[i] = valueToAny(elem, elem.Type())
		}

		return out
	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			out[key] = valueToAny(iter.Value(), iter.Value().Type())
		}

		return out
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}

		return valueToAny(val.Elem(), val.Elem().Type())
	default:
		return val.Interface()
	}
}

// overlayMaps 用 src 覆盖 dst，类型不一致时 src 直接替换。
//
// 仅用于默认值叠加：默认值与配置的类型冲突交给解码阶段报告。
func overlayMaps(dst, src map[string]any) {
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				overlayMaps(dstMap, valueMap)

				continue
			}
		}

		dst[key] = value
	}
}

func decodeConfigMap(data map[string]any, out any, errorUnused bool) error {
	conf := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		ErrorUnused:      errorUnused,
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	}
	decoder, err := mapstructure.NewDecoder(conf)
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
