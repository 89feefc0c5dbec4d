package booking

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "noShow"
	StatusRejected   Status = "rejected"
	StatusReassigned Status = "reassigned"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusRejected,
	StatusReassigned,
}

// activeStatuses occupy their assignee's time window.
var activeStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusReassigned,
}

func InitialStatus() Status {
	return StatusPending
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsActive() bool {
	for _, st := range activeStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow, StatusRejected:
		return true
	}
	return false
}

// ActiveStatusValues is the active set as plain strings, for queries.
func ActiveStatusValues() []string {
	out := make([]string, 0, len(activeStatuses))
	for _, st := range activeStatuses {
		out = append(out, string(st))
	}
	return out
}

// ===============================
// Payment Status
// ===============================

const (
	PaymentNone     = "none"
	PaymentAwaiting = "awaiting"
	PaymentPaid     = "paid"
)
