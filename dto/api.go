package dto

import "github.com/hanyam/TaskManagement-sub002/apperrors"

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  []apperrors.Error `json:"errors,omitempty"`
	TraceID string            `json:"traceId,omitempty"`
}

func SuccessResponse(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func ErrorResponse(errs []apperrors.Error, traceID string) Response {
	return Response{Success: false, Errors: errs, TraceID: traceID}
}

// Paged wraps list payloads. TotalPages is derived, never stored.
type Paged struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPaged(items any, totalCount, page, pageSize int) Paged {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return Paged{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
