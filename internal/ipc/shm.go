package ipc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Frame is a fixed-size region of memory mapped MAP_SHARED between
// the server and every client, backed by a named file. It is the
// concrete realization of spec.md §4.1.
type Frame struct {
	name  string
	size  int
	fd    int
	data  []byte
	owner bool
}

// MapFrame opens (and, if create is true, creates and zero-initializes)
// the named frame. The creator truncates the backing file to size
// before mapping; consumers only open and map it.
func MapFrame(name string, size int, create bool) (*Frame, error) {
	path := FramePath(name)

	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0640)
	if err != nil {
		return nil, fmt.Errorf("ipc: open shared memory %q: %w", path, err)
	}
	fd := int(file.Fd())

	if create {
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			file.Close()
			return nil, fmt.Errorf("ipc: truncate shared memory %q: %w", path, err)
		}
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ipc: mmap shared memory %q: %w", path, err)
	}

	// The mapping keeps the file's pages alive; the descriptor itself
	// can be released once mmap has taken its reference.
	file.Close()

	if create {
		for i := range data {
			data[i] = 0
		}
	}

	return &Frame{name: name, size: size, fd: fd, data: data, owner: create}, nil
}

// Bytes returns the mapped region. Mutations are visible to every
// other process holding the same mapping.
func (f *Frame) Bytes() []byte { return f.data }

// Close unmaps the frame. It does not remove the backing file; only
// the master calls Unlink for that.
func (f *Frame) Close() error {
	if f.data == nil {
		return nil
	}
	err := unix.Munmap(f.data)
	f.data = nil
	return err
}

// Unlink removes the backing file. Only the server, as the resource's
// master, may call this (spec.md §5: "the server is the sole
// creator/destroyer of named resources").
func (f *Frame) Unlink() error {
	return os.Remove(FramePath(f.name))
}
