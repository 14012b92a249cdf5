package domain

type Status string

const (
	StatusOpen             Status = "OPEN"
	StatusProposalReceived Status = "PROPOSAL_RECEIVED"
	StatusPaused           Status = "PAUSED"
	StatusPaid             Status = "PAID"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusConcluded        Status = "CONCLUDED"
	StatusFinished         Status = "FINISHED"
	StatusCancelled        Status = "CANCELLED"
)

var allStatuses = map[Status]struct{}{
	StatusOpen:             {},
	StatusProposalReceived: {},
	StatusPaused:           {},
	StatusPaid:             {},
	StatusInProgress:       {},
	StatusConcluded:        {},
	StatusFinished:         {},
	StatusCancelled:        {},
}

// ParseStatus accepts only the enumerated values, case-sensitively.
func ParseStatus(value string) (Status, bool) {
	s := Status(value)
	_, ok := allStatuses[s]
	return s, ok
}

func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Reserved statuses are only reachable through payment reconciliation.
func (s Status) Reserved() bool {
	return s == StatusPaid
}
