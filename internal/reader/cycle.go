package reader

import (
	"github.com/dl/uringcat/internal/uring"
)

// Phase names the step of a read cycle that failed.
type Phase string

const (
	PhaseAcquire    Phase = "acquire-slot"
	PhaseSubmit     Phase = "submit"
	PhaseWait       Phase = "wait"
	PhaseCompletion Phase = "completion"
)

// PhaseError wraps a cycle failure with the phase it occurred in.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return string(e.Phase) + ": " + e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// runCycle performs exactly one submit/wait/decode iteration: acquire a
// submission slot, issue a read at the session's current offset, block for
// the completion, acknowledge it, then dispatch the decoded result.
//
// The CQE is acknowledged immediately after its result code is captured,
// before the result is acted on, so the completion slot is released on
// every path including errors.
func runCycle(ring *uring.Ring, s *Session, chunk int, handlers *handlerArena) (done bool, err error) {
	sqe, err := ring.NextSQE()
	if err != nil {
		return true, &PhaseError{Phase: PhaseAcquire, Err: err}
	}

	n := chunk
	if n > len(s.buf) {
		n = len(s.buf)
	}
	sqe.PrepRead(int32(s.fd), &s.buf[0], uint32(n), s.offset)

	if err := ring.Submit(); err != nil {
		return true, &PhaseError{Phase: PhaseSubmit, Err: err}
	}

	cqe, err := ring.WaitCQE()
	if err != nil {
		return true, &PhaseError{Phase: PhaseWait, Err: err}
	}
	res := cqe.Res
	ring.Seen()

	return handlers.dispatch(Decode(res))
}
