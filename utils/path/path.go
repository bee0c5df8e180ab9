package path

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 專案根目錄（由本檔位置 utils/path/path.go 往上兩層）
func RootPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("無法取得 caller 位置")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}

// Resolve 相對路徑接在 base 之下，並確認檔案存在
func Resolve(base, name string) (string, error) {
	if !filepath.IsAbs(name) {
		name = filepath.Join(base, name)
	}
	info, err := os.Stat(name)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("config file not found: %s", name)
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("config path is a directory: %s", name)
	}
	return name, nil
}
