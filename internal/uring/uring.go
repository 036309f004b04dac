// Package uring provides a minimal io_uring wrapper for sequential file I/O.
// Pure Go, no CGO. Uses unsafe for kernel struct layouts and ring pointer arithmetic.
// Only supports split submit/wait with one CQE reaped at a time — no SQPOLL,
// no fixed files, no SQE chaining.
package uring

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// Mmap offsets for io_uring_setup.
	offSQRing = 0
	offCQRing = 0x8000000
	offSQEs   = 0x10000000

	// io_uring_enter flags.
	enterGetEvents = 1

	// io_uring_params features.
	featSingleMmap = 1 << 0
)

// ErrQueueFull is returned by NextSQE when every submission slot is
// occupied by a request whose completion has not been reaped yet.
var ErrQueueFull = errors.New("submission queue full")

// sqringOffsets matches struct io_sqring_offsets from linux/io_uring.h.
type sqringOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Flags       uint32
	Dropped     uint32
	Array       uint32
	Resv1       uint32
	UserAddr    uint64
}

// cqringOffsets matches struct io_cqring_offsets from linux/io_uring.h.
type cqringOffsets struct {
	Head        uint32
	Tail        uint32
	RingMask    uint32
	RingEntries uint32
	Overflow    uint32
	CQEs        uint32
	Flags       uint32
	Resv1       uint32
	UserAddr    uint64
}

// params matches struct io_uring_params from linux/io_uring.h.
type params struct {
	SQEntries    uint32
	CQEntries    uint32
	Flags        uint32
	SQThreadCPU  uint32
	SQThreadIdle uint32
	Features     uint32
	WQFd         uint32
	Resv         [3]uint32
	SQOff        sqringOffsets
	CQOff        cqringOffsets
}

// SQE is a 64-byte submission queue entry matching struct io_uring_sqe.
type SQE struct {
	Opcode      uint8
	Flags       uint8
	Ioprio      uint16
	Fd          int32
	Off         uint64 // file offset or addr2
	Addr        uint64 // buffer address or pathname
	Len         uint32 // buffer length
	OpcodeFlags uint32 // union: rw_flags, open_flags, statx_flags, etc.
	UserData    uint64
	BufIndex    uint16
	Personality uint16
	SpliceFdIn  int32
	Addr3       uint64
	_pad2       [1]uint64
}

// CQE is a 16-byte completion queue entry matching struct io_uring_cqe.
// Res follows the kernel convention: positive byte count, zero for EOF,
// negated errno on failure.
type CQE struct {
	UserData uint64
	Res      int32
	Flags    uint32
}

// Ring is a minimal io_uring instance.
type Ring struct {
	fd      int
	sqMem   []byte // mmap'd SQ ring
	cqMem   []byte // mmap'd CQ ring (may be same as sqMem with SINGLE_MMAP)
	sqesMem []byte // mmap'd SQE array

	// SQ ring pointers (into mmap'd memory)
	sqHead  *uint32
	sqTail  *uint32
	sqMask  uint32
	sqArray unsafe.Pointer // base of uint32 indirection array

	// CQ ring pointers (into mmap'd memory)
	cqHead *uint32
	cqTail *uint32
	cqMask uint32
	cqes   unsafe.Pointer // base of CQE array

	sqes    unsafe.Pointer // base of SQE array
	entries uint32

	// Local tail for SQEs handed out by NextSQE but not yet published
	// to the kernel by Submit. Single-threaded use only.
	sqeNext uint32
}

// NewRing creates an io_uring instance with the given number of entries.
// entries must be a power of 2 (the kernel will round up if not).
func NewRing(entries uint32) (*Ring, error) {
	var p params
	fd, _, errno := syscall.RawSyscall(unix.SYS_IO_URING_SETUP,
		uintptr(entries), uintptr(unsafe.Pointer(&p)), 0)
	if errno != 0 {
		return nil, fmt.Errorf("io_uring_setup: %w", errno)
	}

	r := &Ring{
		fd:      int(fd),
		entries: p.SQEntries,
	}

	if err := r.mmapRings(&p); err != nil {
		unix.Close(r.fd)
		return nil, err
	}

	r.sqeNext = atomic.LoadUint32(r.sqTail)
	return r, nil
}

func (r *Ring) mmapRings(p *params) error {
	// Map SQ ring
	sqRingSize := p.SQOff.Array + p.SQEntries*4 // array of uint32
	sqMem, err := syscall.Mmap(r.fd, offSQRing, int(sqRingSize),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED|syscall.MAP_POPULATE)
	if err != nil {
		return fmt.Errorf("mmap sq ring: %w", err)
	}
	r.sqMem = sqMem

	// Map CQ ring (may be same region with SINGLE_MMAP)
	if p.Features&featSingleMmap != 0 {
		r.cqMem = sqMem
	} else {
		cqRingSize := p.CQOff.CQEs + p.CQEntries*uint32(unsafe.Sizeof(CQE{}))
		cqMem, err := syscall.Mmap(r.fd, offCQRing, int(cqRingSize),
			syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED|syscall.MAP_POPULATE)
		if err != nil {
			syscall.Munmap(sqMem)
			return fmt.Errorf("mmap cq ring: %w", err)
		}
		r.cqMem = cqMem
	}

	// Map SQE array
	sqeSize := p.SQEntries * uint32(unsafe.Sizeof(SQE{}))
	sqesMem, err := syscall.Mmap(r.fd, offSQEs, int(sqeSize),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED|syscall.MAP_POPULATE)
	if err != nil {
		if r.cqMem != nil && &r.cqMem[0] != &r.sqMem[0] {
			syscall.Munmap(r.cqMem)
		}
		syscall.Munmap(r.sqMem)
		return fmt.Errorf("mmap sqes: %w", err)
	}
	r.sqesMem = sqesMem

	// Set up SQ pointers
	base := unsafe.Pointer(&sqMem[0])
	r.sqHead = (*uint32)(unsafe.Add(base, p.SQOff.Head))
	r.sqTail = (*uint32)(unsafe.Add(base, p.SQOff.Tail))
	r.sqMask = *(*uint32)(unsafe.Add(base, p.SQOff.RingMask))
	r.sqArray = unsafe.Add(base, p.SQOff.Array)

	// Set up CQ pointers
	cqBase := unsafe.Pointer(&r.cqMem[0])
	r.cqHead = (*uint32)(unsafe.Add(cqBase, p.CQOff.Head))
	r.cqTail = (*uint32)(unsafe.Add(cqBase, p.CQOff.Tail))
	r.cqMask = *(*uint32)(unsafe.Add(cqBase, p.CQOff.RingMask))
	r.cqes = unsafe.Add(cqBase, p.CQOff.CQEs)

	// SQE array base
	r.sqes = unsafe.Pointer(&sqesMem[0])

	return nil
}

// Close releases all resources.
func (r *Ring) Close() {
	if r.sqesMem != nil {
		syscall.Munmap(r.sqesMem)
	}
	if r.cqMem != nil && (r.sqMem == nil || &r.cqMem[0] != &r.sqMem[0]) {
		syscall.Munmap(r.cqMem)
	}
	if r.sqMem != nil {
		syscall.Munmap(r.sqMem)
	}
	unix.Close(r.fd)
}

// NextSQE acquires the next free submission slot and returns its zeroed SQE.
// Returns ErrQueueFull when all entries are occupied by requests whose
// completions have not been reaped — with single-in-flight use this means
// slot accounting is broken and the caller cannot safely continue.
func (r *Ring) NextSQE() (*SQE, error) {
	head := atomic.LoadUint32(r.sqHead)
	if r.sqeNext-head >= r.entries {
		return nil, ErrQueueFull
	}
	idx := r.sqeNext & r.sqMask
	r.sqeNext++
	sqe := (*SQE)(unsafe.Add(r.sqes, uintptr(idx)*unsafe.Sizeof(SQE{})))
	*sqe = SQE{}
	return sqe, nil
}

// Submit publishes all SQEs handed out by NextSQE since the last Submit
// and tells the kernel about them. It does not wait for completions.
func (r *Ring) Submit() error {
	tail := atomic.LoadUint32(r.sqTail)
	count := r.sqeNext - tail
	if count == 0 {
		return nil
	}

	// SQ array: slot -> SQE index. NextSQE allocates SQEs at the same
	// masked index, so the mapping is the identity.
	for i := uint32(0); i < count; i++ {
		slot := (tail + i) & r.sqMask
		*(*uint32)(unsafe.Add(r.sqArray, uintptr(slot)*4)) = slot
	}

	// Advance SQ tail (release semantics — kernel reads this)
	atomic.StoreUint32(r.sqTail, tail+count)

	_, _, errno := syscall.Syscall6(unix.SYS_IO_URING_ENTER,
		uintptr(r.fd), uintptr(count), 0, 0, 0, 0)
	if errno != 0 {
		return fmt.Errorf("io_uring_enter: %w", errno)
	}
	return nil
}

// WaitCQE blocks until at least one completion is available and returns a
// pointer to the head CQE without consuming it. The caller must capture
// Res and then call Seen exactly once to release the slot; the pointer is
// invalid after Seen. An error here is a failure of the wait call itself,
// distinct from the completion's own result code.
func (r *Ring) WaitCQE() (*CQE, error) {
	for {
		head := atomic.LoadUint32(r.cqHead)
		tail := atomic.LoadUint32(r.cqTail)
		if head != tail {
			idx := head & r.cqMask
			return (*CQE)(unsafe.Add(r.cqes, uintptr(idx)*unsafe.Sizeof(CQE{}))), nil
		}

		_, _, errno := syscall.Syscall6(unix.SYS_IO_URING_ENTER,
			uintptr(r.fd), 0, 1, enterGetEvents, 0, 0)
		if errno != 0 {
			if errno == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("io_uring_enter: %w", errno)
		}
	}
}

// Seen acknowledges the CQE last returned by WaitCQE, releasing its slot
// back to the kernel. Skipping this leaks completion-queue capacity.
func (r *Ring) Seen() {
	atomic.StoreUint32(r.cqHead, atomic.LoadUint32(r.cqHead)+1)
}

// Entries returns the ring size.
func (r *Ring) Entries() uint32 {
	return r.entries
}
