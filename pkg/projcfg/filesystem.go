package projcfg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Locator 在文件系统中定位配置文件。
type Locator interface {
	// FindFile 返回找到的文件路径；未找到时第二个返回值为 false。
	FindFile(name, startingPath string) (string, bool)
}

// FileReader 读取配置文件内容。
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Filesystem 组合 [Locator] 与 [FileReader]，是 [Service] 依赖的文件系统能力。
type Filesystem interface {
	Locator
	FileReader
}

type lookupKey struct {
	name  string
	start string
}

// DiskFilesystem 是基于本地磁盘的 [Filesystem] 实现。
//
// 查找结果按 (name, 起始目录) 缓存，命中与未命中都会缓存。
// 缓存只会通过 [DiskFilesystem.ClearCache] 清空，不会根据文件修改时间自动失效。
type DiskFilesystem struct {
	mu    sync.Mutex
	cache map[lookupKey]string
}

// NewDiskFilesystem 创建一个带独立查找缓存的 DiskFilesystem。
func NewDiskFilesystem() *DiskFilesystem {
	return &DiskFilesystem{cache: make(map[lookupKey]string)}
}

// defaultFilesystem 为进程内共享的默认文件系统，未通过 [WithFilesystem] 指定时使用。
var defaultFilesystem = NewDiskFilesystem()

// FindFile 查找配置文件。
//
// 规则：
//   - name 展开 ~ 后若为绝对路径，仅当其为普通文件时返回，不做向上搜索
//   - 否则从 startingPath（为空时取当前工作目录）开始，逐级向上检查直到根目录
//   - 返回第一个包含名为 name 的普通文件的目录与 name 拼接后的路径
func (d *DiskFilesystem) FindFile(name, startingPath string) (string, bool) {
	start := startingPath
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		start = wd
	}
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}

	key := lookupKey{name: name, start: start}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache == nil {
		d.cache = make(map[lookupKey]string)
	}
	if path, ok := d.cache[key]; ok {
		return path, path != ""
	}

	path := findFile(name, start)
	d.cache[key] = path

	return path, path != ""
}

// ReadFile 读取文件全部内容。
func (d *DiskFilesystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // path comes from discovery
}

// ClearCache 清空查找缓存，用于外部修改文件后需要重新发现的场景。
func (d *DiskFilesystem) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[lookupKey]string)
}

func findFile(name, start string) string {
	if expanded := expandHome(name); filepath.IsAbs(expanded) {
		if isRegularFile(expanded) {
			return expanded
		}

		return ""
	}

	for dir := start; ; {
		candidate := filepath.Join(dir, name)
		if isRegularFile(candidate) {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandHome(name string) string {
	if name != "~" && !strings.HasPrefix(name, "~/") {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}

	return filepath.Join(home, strings.TrimPrefix(name, "~"))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
