package constants

// Action names recorded in the task history trail.
const (
	ActionCreated           = "Created"
	ActionAssigned          = "Assigned"
	ActionReassigned        = "Reassigned"
	ActionAccepted          = "Accepted"
	ActionRejected          = "Rejected"
	ActionCompleted         = "Completed"
	ActionCancelled         = "Cancelled"
	ActionReviewed          = "Reviewed"
	ActionSentBackForRework = "SentBackForRework"
)
