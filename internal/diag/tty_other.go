//go:build !linux

package diag

import "os"

// isTerminal 最小 TTY 判定：字符设备。
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
