package download

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a transfer cannot move to the
// requested state.
var ErrInvalidTransition = errors.New("invalid download state transition")

// State is the lifecycle position of a transfer.
type State int

const (
	StateRequested State = iota
	StateInProgress
	StateCompleted
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// InterruptReason explains why a transfer stopped before completion.
type InterruptReason int

const (
	InterruptNone InterruptReason = iota
	InterruptFileFailed
	InterruptFileAccessDenied
	InterruptFileNoSpace
	InterruptNetworkFailed
	InterruptNetworkTimeout
	InterruptServerFailed
	InterruptServerBadContent
	InterruptUserCanceled
)

func (r InterruptReason) String() string {
	switch r {
	case InterruptNone:
		return "none"
	case InterruptFileFailed:
		return "file-failed"
	case InterruptFileAccessDenied:
		return "file-access-denied"
	case InterruptFileNoSpace:
		return "file-no-space"
	case InterruptNetworkFailed:
		return "network-failed"
	case InterruptNetworkTimeout:
		return "network-timeout"
	case InterruptServerFailed:
		return "server-failed"
	case InterruptServerBadContent:
		return "server-bad-content"
	case InterruptUserCanceled:
		return "user-canceled"
	default:
		return fmt.Sprintf("interrupt(%d)", int(r))
	}
}

// UnknownTotal is the TotalBytes value before the size is known.
const UnknownTotal int64 = -1

// Transfer is a download accepted from a Download decision.
// It is not safe for concurrent use.
type Transfer struct {
	ID              string
	URL             string
	Path            string
	MimeType        string
	Reason          Reason
	State           State
	InterruptReason InterruptReason
	ReceivedBytes   int64
	TotalBytes      int64
	StartedAt       time.Time
	FinishedAt      time.Time
}

// NewTransfer creates a transfer in the Requested state.
func NewTransfer(id, url string, decision Decision) *Transfer {
	return &Transfer{
		ID:         id,
		URL:        url,
		MimeType:   decision.MimeType,
		Reason:     decision.Reason,
		State:      StateRequested,
		TotalBytes: UnknownTotal,
	}
}

// Accept sets the destination path. Only valid while Requested.
func (t *Transfer) Accept(path string) error {
	if t.State != StateRequested {
		return t.invalid("accept")
	}
	if path == "" {
		return fmt.Errorf("accept download: empty path")
	}
	t.Path = path
	return nil
}

// Start moves an accepted transfer to InProgress. total may be UnknownTotal.
func (t *Transfer) Start(total int64) error {
	if t.State != StateRequested || t.Path == "" {
		return t.invalid("start")
	}
	if total < 0 {
		total = UnknownTotal
	}
	t.State = StateInProgress
	t.TotalBytes = total
	t.StartedAt = time.Now()
	return nil
}

// Progress records n more received bytes.
func (t *Transfer) Progress(n int64) error {
	if t.State != StateInProgress {
		return t.invalid("progress")
	}
	t.ReceivedBytes += n
	return nil
}

// Complete finishes the transfer. An unknown total becomes the received count.
func (t *Transfer) Complete() error {
	if t.State != StateInProgress {
		return t.invalid("complete")
	}
	if t.TotalBytes == UnknownTotal {
		t.TotalBytes = t.ReceivedBytes
	}
	t.State = StateCompleted
	t.FinishedAt = time.Now()
	return nil
}

// Interrupt stops a non-finished transfer with reason.
func (t *Transfer) Interrupt(reason InterruptReason) error {
	if t.IsFinished() {
		return t.invalid("interrupt")
	}
	if reason == InterruptNone {
		reason = InterruptFileFailed
	}
	t.State = StateInterrupted
	t.InterruptReason = reason
	t.FinishedAt = time.Now()
	return nil
}

// Cancel interrupts the transfer on behalf of the user.
func (t *Transfer) Cancel() error {
	return t.Interrupt(InterruptUserCanceled)
}

// IsFinished reports whether the transfer reached a terminal state.
func (t *Transfer) IsFinished() bool {
	return t.State == StateCompleted || t.State == StateInterrupted
}

// Percent returns completion in [0,1], or -1 when the total is unknown.
func (t *Transfer) Percent() float64 {
	if t.TotalBytes <= 0 {
		if t.State == StateCompleted {
			return 1
		}
		return -1
	}
	return float64(t.ReceivedBytes) / float64(t.TotalBytes)
}

func (t *Transfer) invalid(op string) error {
	return fmt.Errorf("%s from %s: %w", op, t.State, ErrInvalidTransition)
}
