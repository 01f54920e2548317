package events

import "github.com/kilianp07/lineplan/core/model"

// Kind discriminates events on the bus.
type Kind int

const (
	KindTransferApplied Kind = iota + 1
	KindTransferRejected
	KindRunFinished
)

func (k Kind) String() string {
	switch k {
	case KindTransferApplied:
		return "transfer_applied"
	case KindTransferRejected:
		return "transfer_rejected"
	case KindRunFinished:
		return "run_finished"
	default:
		return "unknown"
	}
}

// Event is implemented by every payload published on the bus.
type Event interface {
	Kind() Kind
}

// TransferApplied is published after a commit.
type TransferApplied struct {
	RunID    string
	Transfer model.AppliedTransfer
}

func (TransferApplied) Kind() Kind { return KindTransferApplied }

// TransferRejected is published after a revert.
type TransferRejected struct {
	RunID             string
	Iteration         int
	Candidate         model.TransferCandidate
	PeakConstraints   model.ConstraintResult
	ValleyConstraints model.ConstraintResult
	Reason            string
}

func (TransferRejected) Kind() Kind { return KindTransferRejected }

// RunFinished is published once the loop stops.
type RunFinished struct {
	RunID      string
	Week       string
	Iterations int
	Applied    int
	Rejected   int
	Stop       string
}

func (RunFinished) Kind() Kind { return KindRunFinished }
