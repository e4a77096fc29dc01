package domain

// ApplicationStatus represents the lifecycle status of a plafond application
type ApplicationStatus string

const (
	StatusPendingReview   ApplicationStatus = "PENDING_REVIEW"
	StatusWaitingApproval ApplicationStatus = "WAITING_APPROVAL"
	StatusApproved        ApplicationStatus = "APPROVED"
	StatusRejected        ApplicationStatus = "REJECTED"
)

// applicationTransitions is the authoritative edge table of the application
// state machine. A status not present as a key is terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPendingReview:   {StatusWaitingApproval, StatusRejected},
	StatusWaitingApproval: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether the status may move to next
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further review/approval transition exists
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// DisbursementStatus represents the lifecycle status of a disbursement request
type DisbursementStatus string

const (
	DisbursementPending   DisbursementStatus = "PENDING"
	DisbursementDisbursed DisbursementStatus = "DISBURSED"
	DisbursementCancelled DisbursementStatus = "CANCELLED"
)

var disbursementTransitions = map[DisbursementStatus][]DisbursementStatus{
	DisbursementPending: {DisbursementDisbursed, DisbursementCancelled},
}

// CanTransitionTo reports whether the status may move to next
func (s DisbursementStatus) CanTransitionTo(next DisbursementStatus) bool {
	for _, allowed := range disbursementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the disbursement is settled
func (s DisbursementStatus) IsTerminal() bool {
	return len(disbursementTransitions[s]) == 0
}
