//go:build windows

package scanner

import (
	"io/fs"
	"sync"
)

// platformRootInfo holds platform-specific root information. Windows
// volumes are separate namespaces, so no mount point detection needed.
type platformRootInfo struct{}

func getPlatformRootInfo(path string) platformRootInfo {
	return platformRootInfo{}
}

func shouldSkipDir(path string, d fs.DirEntry, rootInfo platformRootInfo, seenItems *sync.Map) bool {
	return false
}

// getFileSize returns the logical file size.
func getFileSize(info fs.FileInfo, seenItems *sync.Map) int64 {
	return info.Size()
}
