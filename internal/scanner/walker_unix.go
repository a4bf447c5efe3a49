//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// platformRootInfo holds platform-specific root information.
type platformRootInfo struct {
	dev uint64
}

func getPlatformRootInfo(path string) platformRootInfo {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return platformRootInfo{}
	}
	return platformRootInfo{dev: uint64(stat.Dev)}
}

// shouldSkipDir reports whether a directory must not be descended into:
// mount points (different device) and directories whose inode was
// already visited (firmlinks on macOS).
func shouldSkipDir(path string, d fs.DirEntry, rootInfo platformRootInfo, seenItems *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}

	if uint64(stat.Dev) != rootInfo.dev {
		return true
	}

	if _, exists := seenItems.LoadOrStore(stat.Ino, true); exists {
		return true
	}

	return false
}

// getFileSize returns a file's weight contribution, or -1 when the file
// was already counted through another hard link. The allocated block
// count is used rather than the logical length so sparse files weigh
// what they actually occupy.
func getFileSize(info fs.FileInfo, seenItems *sync.Map) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}

	if stat.Nlink > 1 {
		if _, exists := seenItems.LoadOrStore(stat.Ino, true); exists {
			return -1
		}
	}

	// Blocks is in 512-byte units.
	return stat.Blocks * 512
}
