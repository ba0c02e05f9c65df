package models

// TaskStatus is the lifecycle state of a task. Values are stable and
// shared with the web client; do not reorder.
type TaskStatus int

const (
	StatusCreated TaskStatus = iota
	StatusAssigned
	StatusUnderReview
	StatusAccepted
	StatusRejected
	StatusCompleted
	StatusCancelled
	StatusPendingManagerReview
	StatusRejectedByManager
)

func (s TaskStatus) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusAssigned:
		return "Assigned"
	case StatusUnderReview:
		return "UnderReview"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusPendingManagerReview:
		return "PendingManagerReview"
	case StatusRejectedByManager:
		return "RejectedByManager"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether no further transitions are accepted.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejectedByManager
}

type TaskPriority int

const (
	PriorityLow TaskPriority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

type TaskType int

const (
	TypeSimple TaskType = iota
	TypeWithDueDate
	TypeWithProgress
	TypeWithAcceptedProgress
)

func (t TaskType) String() string {
	switch t {
	case TypeSimple:
		return "Simple"
	case TypeWithDueDate:
		return "WithDueDate"
	case TypeWithProgress:
		return "WithProgress"
	case TypeWithAcceptedProgress:
		return "WithAcceptedProgress"
	default:
		return "Unknown"
	}
}

func (t TaskType) Valid() bool {
	return t >= TypeSimple && t <= TypeWithAcceptedProgress
}

// TracksProgress reports whether the task type records progress updates.
func (t TaskType) TracksProgress() bool {
	return t == TypeWithProgress || t == TypeWithAcceptedProgress
}

// ReminderLevel is a derived urgency label; it is computed from due and
// creation dates and never persisted.
type ReminderLevel int

const (
	ReminderNone ReminderLevel = iota
	ReminderLow
	ReminderMedium
	ReminderHigh
	ReminderCritical
)

func (l ReminderLevel) String() string {
	switch l {
	case ReminderNone:
		return "None"
	case ReminderLow:
		return "Low"
	case ReminderMedium:
		return "Medium"
	case ReminderHigh:
		return "High"
	case ReminderCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

type ProgressStatus int

const (
	ProgressPending ProgressStatus = iota
	ProgressAccepted
	ProgressRejected
)

func (s ProgressStatus) String() string {
	switch s {
	case ProgressPending:
		return "Pending"
	case ProgressAccepted:
		return "Accepted"
	case ProgressRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

type ExtensionRequestStatus int

const (
	ExtensionPending ExtensionRequestStatus = iota
	ExtensionApproved
	ExtensionRejected
)

func (s ExtensionRequestStatus) String() string {
	switch s {
	case ExtensionPending:
		return "Pending"
	case ExtensionApproved:
		return "Approved"
	case ExtensionRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}
