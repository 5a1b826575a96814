//go:build !linux

package watcher

// DetectFilesystemType is only implemented on Linux; elsewhere fsnotify is
// tried first and polling takes over if it cannot watch the directory.
func DetectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
