// Package ipc maps the named shared-memory region and named counting
// semaphores spec.md §4.1/§4.2 describe onto concrete Linux kernel
// primitives: a tmpfs-backed file mapped with mmap for the frame, and
// System-V semaphore sets (keyed off a stable hash of the resource
// name, playing the role ftok(3) plays for path-derived keys) for the
// three semaphores. Both are genuinely cross-process and kernel
// arbitrated, which an in-process channel would not be.
package ipc

import (
	"hash/fnv"
	"os"
	"path/filepath"
)

// shmDir returns the directory shared-memory-backed files live under.
// /dev/shm is the tmpfs POSIX shared memory objects are themselves
// backed by on Linux; falling back to the OS temp directory keeps the
// same file-based mapping working on systems without it mounted.
func shmDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// FramePath returns the path a named shared memory region is backed
// by on disk.
func FramePath(name string) string {
	return filepath.Join(shmDir(), name)
}

// semKey derives a stable System-V IPC key from a resource name so
// unrelated processes that agree on the name agree on the key, the
// same role a path+project-id pair plays for ftok(3). Key 0
// (IPC_PRIVATE) is avoided since it never matches across calls.
func semKey(name string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	key := int32(h.Sum32() & 0x3fffffff)
	if key == 0 {
		key = 1
	}
	return key
}
