package uring

import "unsafe"

// io_uring opcodes from linux/io_uring.h.
const (
	OpRead = 22
)

// PrepRead sets up an SQE for IORING_OP_READ: read up to nbytes into buf
// from fd at the given file offset. buf must stay alive and unshared until
// the matching CQE is reaped.
func (sqe *SQE) PrepRead(fd int32, buf *byte, nbytes uint32, offset uint64) {
	*sqe = SQE{} // zero out
	sqe.Opcode = OpRead
	sqe.Fd = fd
	sqe.Addr = uint64(uintptr(unsafe.Pointer(buf)))
	sqe.Len = nbytes
	sqe.Off = offset
}
