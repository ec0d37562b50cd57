package projcfg

// Dumper 是 schema 构造出的实例，能导出为 map。
type Dumper interface {
	Dump() map[string]any
}

// Schema 从 map 构造实例；不满足约束时返回携带字段诊断信息的错误。
type Schema interface {
	Construct(values map[string]any) (Dumper, error)
}

// SchemaFunc 让普通函数实现 [Schema]。
type SchemaFunc func(values map[string]any) (Dumper, error)

// Construct 实现 [Schema] 接口。
func (f SchemaFunc) Construct(values map[string]any) (Dumper, error) {
	return f(values)
}

// MapInstance 是直接以 map 作为结果的 [Dumper]。
type MapInstance map[string]any

// Dump 实现 [Dumper] 接口。
func (m MapInstance) Dump() map[string]any {
	return m
}

// Validator 用 schema 校验配置值。
type Validator interface {
	Validate(values map[string]any, schema Schema) (map[string]any, error)
}

// SchemaValidator 是默认的 [Validator]。
//
// 成功时总是返回 schema 实例 Dump 出的 map（可能补全了默认值、转换了类型），
// 从不返回传入的 values；失败时返回 [SchemaRejectedError]，不做部分校验。
type SchemaValidator struct{}

// Validate 实现 [Validator] 接口。
func (SchemaValidator) Validate(values map[string]any, schema Schema) (map[string]any, error) {
	instance, err := schema.Construct(values)
	if err != nil {
		return nil, &SchemaRejectedError{Err: err}
	}

	dumped := instance.Dump()
	if dumped == nil {
		dumped = map[string]any{}
	}

	return dumped, nil
}
