package apperrors

import "github.com/google/uuid"

// Task-specific error values, mirrored by the API tests.
var (
	InvalidPageNumber = Error{Code: CodeValidation, Message: "Page must be greater than 0", Field: "Page"}
	InvalidPageSize   = Error{Code: CodeValidation, Message: "Page size must be between 1 and 100", Field: "PageSize"}
	InvalidDateRange  = Error{Code: CodeValidation, Message: "Due date from cannot be greater than due date to", Field: "DueDateFrom"}

	TaskAccessDenied = AccessDenied("You do not have access to this task. Tasks can only be accessed by the creator, assigned user, or users in the assignment chain.")
)

func TaskNotFoundByID(taskID uuid.UUID) Error {
	return NotFoundByID("Task", taskID)
}
