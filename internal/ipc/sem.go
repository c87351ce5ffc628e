package ipc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Semaphore is one named counting semaphore, backed by a single-member
// System-V semaphore set. Three independent Semaphore values play the
// roles S1 ("wake-server"), S2 ("wake-client") and S3 ("client-excl")
// from spec.md §4.2.
type Semaphore struct {
	id    int
	owner bool
}

// OpenSemaphore creates (if create is true, initialized to initial) or
// opens the named semaphore. The server is always the creator; clients
// only open.
func OpenSemaphore(name string, initial int, create bool) (*Semaphore, error) {
	key := int(semKey(name))

	flags := 0
	if create {
		flags = unix.IPC_CREAT | unix.IPC_EXCL | 0660
	}

	id, err := unix.Semget(key, 1, flags)
	if err != nil {
		return nil, fmt.Errorf("ipc: semget %q: %w", name, err)
	}

	if create {
		if err := semSetval(id, initial); err != nil {
			return nil, fmt.Errorf("ipc: initialize semaphore %q: %w", name, err)
		}
	}

	return &Semaphore{id: id, owner: create}, nil
}

// Wait decrements the semaphore, blocking until its value is positive.
// A signal delivered while blocked returns unix.EINTR: per spec.md
// §5, the server treats EINTR on S1 as a shutdown request, while a
// client treats EINTR anywhere as fatal. Neither case is retried here;
// the caller decides.
func (s *Semaphore) Wait() error {
	return unix.Semop(s.id, []unix.Sembuf{{SemNum: 0, SemOp: -1, SemFlg: 0}})
}

// Post increments the semaphore, waking at most one blocked waiter.
func (s *Semaphore) Post() error {
	return unix.Semop(s.id, []unix.Sembuf{{SemNum: 0, SemOp: 1, SemFlg: 0}})
}

// Settle posts to the semaphore until its value is at least 1,
// guaranteeing any process currently blocked in Wait will wake. Used
// on shutdown to release clients parked on S3 (spec.md glossary:
// "Settle").
func (s *Semaphore) Settle() error {
	val, err := semGetval(s.id)
	if err != nil {
		return err
	}
	for ; val < 1; val++ {
		if err := s.Post(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases in-process resources for this handle. System-V
// semaphore sets have no per-process "close"; they persist in the
// kernel until Unlink removes them.
func (s *Semaphore) Close() error { return nil }

// Unlink removes the semaphore set from the kernel. Only the server,
// as master of the resource, calls this.
func (s *Semaphore) Unlink() error {
	_, err := semctl(s.id, 0, unix.IPC_RMID, 0)
	return err
}

func semSetval(id, val int) error {
	_, err := semctl(id, 0, unix.SETVAL, uintptr(val))
	return err
}

func semGetval(id int) (int, error) {
	r, err := semctl(id, 0, unix.GETVAL, 0)
	return r, err
}

// semctl issues the raw semctl(2) syscall. The fourth argument union
// is passed as a plain machine word, which is how the kernel ABI (as
// opposed to glibc's variadic wrapper) actually receives it: an
// immediate value for SETVAL/GETVAL, a pointer for the struct-based
// commands this package doesn't use.
func semctl(id, num, cmd int, arg uintptr) (int, error) {
	r1, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(id), uintptr(num), uintptr(cmd), arg, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}
