// Package projcfg 提供项目配置的查找、解析、合并与校验。
//
// 配置来自一个或多个文件（TOML、INI、YAML、JSON，或 pyproject.toml 中的 [tool.<name>] 段），
// 从起始目录逐级向上查找。调用方得到的是统一的 map[string]any 视图，可以再通过 schema 校验为结构体。
//
// # 处理流程
//
//  1. 查找 - 按 [WithSourceFiles] 的顺序查找每个文件（见 [DiskFilesystem.FindFile]）
//  2. 解析 - 按 (扩展名, 文件名主干) 选择 parser（见 [Registry]）
//  3. 合并 - 默认只使用第一个找到的文件；[WithMergeConfigs] 时从左到右深度合并（见 [DeepMerge]）
//  4. 校验 - 按需调用 [Config.Validate]
//
// # 快速开始
//
//	cfg, err := projcfg.New("acme",
//	    projcfg.WithSourceFiles("pyproject.toml", ".acme.toml"),
//	    projcfg.WithMergeConfigs(),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Values(), cfg.Path())
//
// 类型化加载：
//
//	type Settings struct {
//	    Port int    `json:"port" validate:"gt=0"`
//	    Mode string `json:"mode" validate:"oneof=dev prod"`
//	}
//
//	settings, err := projcfg.Load("acme", Settings{Port: 8080, Mode: "dev"})
//
// # 查找规则
//
//   - 文件名：从起始目录（默认当前工作目录）开始逐级向上，直到根目录
//   - 绝对路径（支持 ~）：只检查是否存在，不做搜索
//   - 未找到不是错误，此时配置为空 map
//
// 查找结果在进程内缓存，使用 [DiskFilesystem.ClearCache] 清空。
//
// # 合并规则
//
//   - 标量：后面的来源覆盖前面的
//   - mapping：逐个 key 递归合并
//   - mapping 合并到标量之上：返回 [MergeConflictError]
//
// # 错误
//
//   - [UnsupportedConfigError] - 没有注册对应格式的 parser
//   - [MalformedSourceError] - 严格模式下文件格式错误（[WithLenientParsing] 时视为空 map）
//   - [MergeConflictError] - 合并类型冲突
//   - [ErrNoSchema] - 校验时没有可用的 schema
//   - [SchemaRejectedError] - schema 拒绝了配置值
package projcfg
