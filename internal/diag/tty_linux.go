//go:build linux

package diag

import (
	"os"

	"golang.org/x/sys/unix"
)

// isTerminal 以 TCGETS ioctl 判定 f 是否为终端。
func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}
