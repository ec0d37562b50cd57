package projcfg

// DeepMerge 把 src 递归合并进 dst，并返回 dst 以便链式调用。
//
// 规则：
//   - src 中值为 map 的 key：递归合并到 dst 对应的 map（不存在时新建）
//   - dst 在该 key 上已有非 map 的值：返回 [MergeConflictError]，不做任何取舍
//   - src 中值不是 map 的 key：无条件覆盖 dst，无论 dst 原来是什么类型
//
// 注意 dst 会被原地修改；出错时 dst 可能已被部分更新。
// 多个来源按 DeepMerge(DeepMerge({}, s1), s2)... 从左到右折叠，最后一个来源的标量优先。
func DeepMerge(dst, src map[string]any) (map[string]any, error) {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}

	return dst, deepMerge(dst, src, "")
}

func deepMerge(dst, src map[string]any, prefix string) error {
	for key, value := range src {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		srcMap, ok := value.(map[string]any)
		if !ok {
			dst[key] = value

			continue
		}

		existing, present := dst[key]
		if !present {
			existing = make(map[string]any, len(srcMap))
			dst[key] = existing
		}
		dstMap, ok := existing.(map[string]any)
		if !ok {
			return &MergeConflictError{Key: fullKey, Existing: existing}
		}
		if dstMap == nil {
			dstMap = make(map[string]any, len(srcMap))
			dst[key] = dstMap
		}

		if err := deepMerge(dstMap, srcMap, fullKey); err != nil {
			return err
		}
	}

	return nil
}
