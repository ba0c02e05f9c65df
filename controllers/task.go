package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/middleware"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/workflows"
)

type TaskController struct {
	Workflows *workflows.Service
	Queries   *queries.Queries
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.CreateTask(c.Request.Context(), workflows.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       models.TaskPriority(req.Priority),
		Type:           models.TaskType(req.Type),
		DueDate:        req.DueDate,
		AssignedUserID: req.AssignedUserID,
		CreatedByID:    middleware.CurrentUserID(c),
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task created")
}

func (tc *TaskController) GetTasks(c *gin.Context) {
	page, pageSize := paging(c)
	params := queries.GetTasksParams{Page: page, PageSize: pageSize}

	if raw := c.Query("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			status := models.TaskStatus(v)
			params.Status = &status
		}
	}
	if raw := c.Query("priority"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			priority := models.TaskPriority(v)
			params.Priority = &priority
		}
	}
	if raw := c.Query("assignedUserId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			params.AssignedUserID = &id
		}
	}
	if raw := c.Query("createdById"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			params.CreatedByID = &id
		}
	}
	if raw := c.Query("dueDateFrom"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			params.DueDateFrom = &t
		}
	}
	if raw := c.Query("dueDateTo"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			params.DueDateTo = &t
		}
	}

	paged, errs := tc.Queries.GetTasks(c.Request.Context(), params)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, paged, "")
}

func (tc *TaskController) GetAssignedTasks(c *gin.Context) {
	page, pageSize := paging(c)
	paged, errs := tc.Queries.GetAssignedTasks(c.Request.Context(), middleware.CurrentUserID(c), page, pageSize)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, paged, "")
}

func (tc *TaskController) GetTasksByReminderLevel(c *gin.Context) {
	page, pageSize := paging(c)
	level := models.ReminderNone
	if raw := c.Query("level"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			level = models.ReminderLevel(v)
		}
	}

	paged, errs := tc.Queries.GetTasksByReminderLevel(c.Request.Context(), middleware.CurrentUserID(c), level, page, pageSize)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, paged, "")
}

func (tc *TaskController) GetTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}

	task, errs := tc.Queries.GetTaskByID(c.Request.Context(), taskID, middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "")
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.UpdateTask(c.Request.Context(), workflows.UpdateTaskInput{
		TaskID:      taskID,
		UserID:      middleware.CurrentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task updated")
}

func (tc *TaskController) AssignTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.AssignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.AssignTask(c.Request.Context(), workflows.AssignTaskInput{
		TaskID:       taskID,
		UserIDs:      req.UserIDs,
		AssignedByID: middleware.CurrentUserID(c),
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task assigned")
}

func (tc *TaskController) ReassignTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.ReassignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.ReassignTask(c.Request.Context(), workflows.ReassignTaskInput{
		TaskID:         taskID,
		UserIDs:        req.NewUserIDs,
		ReassignedByID: middleware.CurrentUserID(c),
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task reassigned")
}

func (tc *TaskController) AcceptTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	task, errs := tc.Workflows.AcceptTask(c.Request.Context(), taskID, middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task accepted")
}

func (tc *TaskController) RejectTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	task, errs := tc.Workflows.RejectTask(c.Request.Context(), taskID, middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task rejected")
}

func (tc *TaskController) CancelTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	errs := tc.Workflows.CancelTask(c.Request.Context(), workflows.CancelTaskInput{
		TaskID: taskID,
		UserID: middleware.CurrentUserID(c),
		Role:   middleware.CurrentRole(c),
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, nil, "Task cancelled")
}

func (tc *TaskController) CompleteTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	task, errs := tc.Workflows.MarkTaskCompleted(c.Request.Context(), taskID, middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task submitted for review")
}

func (tc *TaskController) ReviewTask(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.ReviewTaskRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.ReviewCompletedTask(c.Request.Context(), workflows.ReviewTaskInput{
		TaskID:            taskID,
		ReviewedByID:      middleware.CurrentUserID(c),
		Accepted:          req.Accepted,
		Rating:            req.Rating,
		Feedback:          req.Feedback,
		SendBackForRework: req.SendBackForRework,
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Task reviewed")
}

func (tc *TaskController) UpdateProgress(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateProgressRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.UpdateTaskProgress(c.Request.Context(), workflows.UpdateProgressInput{
		TaskID:             taskID,
		UserID:             middleware.CurrentUserID(c),
		ProgressPercentage: req.ProgressPercentage,
		Notes:              req.Notes,
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Progress recorded")
}

func (tc *TaskController) GetProgressHistory(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	items, errs := tc.Queries.GetTaskProgressHistory(c.Request.Context(), taskID)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, items, "")
}

func (tc *TaskController) AcceptProgress(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	progressID, valid := pathID(c, "progressId")
	if !valid {
		return
	}

	task, errs := tc.Workflows.AcceptTaskProgress(c.Request.Context(), workflows.AcceptProgressInput{
		TaskID:            taskID,
		ProgressHistoryID: progressID,
		AcceptedByID:      middleware.CurrentUserID(c),
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Progress accepted")
}

func (tc *TaskController) RejectProgress(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	progressID, valid := pathID(c, "progressId")
	if !valid {
		return
	}
	var req dto.RejectProgressRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	task, errs := tc.Workflows.RejectTaskProgress(c.Request.Context(), workflows.RejectProgressInput{
		TaskID:            taskID,
		ProgressHistoryID: progressID,
		RejectedByID:      middleware.CurrentUserID(c),
		Notes:             req.Notes,
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, task, "Progress rejected")
}

func (tc *TaskController) RequestExtension(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req dto.RequestExtensionRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	ext, errs := tc.Workflows.RequestDeadlineExtension(c.Request.Context(), workflows.RequestExtensionInput{
		TaskID:           taskID,
		RequestedByID:    middleware.CurrentUserID(c),
		RequestedDueDate: req.RequestedDueDate,
		Reason:           req.Reason,
	})
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, ext, "Extension requested")
}

func (tc *TaskController) GetExtensionRequests(c *gin.Context) {
	page, pageSize := paging(c)
	params := queries.GetExtensionRequestsParams{Page: page, PageSize: pageSize}

	if raw := c.Query("taskId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			params.TaskID = &id
		}
	}
	if raw := c.Query("status"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			status := models.ExtensionRequestStatus(v)
			params.Status = &status
		}
	}

	paged, errs := tc.Queries.GetExtensionRequests(c.Request.Context(), params)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, paged, "")
}

func (tc *TaskController) ApproveExtension(c *gin.Context) {
	tc.reviewExtension(c, true)
}

func (tc *TaskController) RejectExtension(c *gin.Context) {
	tc.reviewExtension(c, false)
}

func (tc *TaskController) reviewExtension(c *gin.Context, approve bool) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	requestID, valid := pathID(c, "requestId")
	if !valid {
		return
	}
	var req dto.ReviewExtensionRequest
	if err := c.BindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	in := workflows.ReviewExtensionInput{
		TaskID:             taskID,
		ExtensionRequestID: requestID,
		ReviewedByID:       middleware.CurrentUserID(c),
		ReviewNotes:        req.ReviewNotes,
	}
	if approve {
		task, errs := tc.Workflows.ApproveExtensionRequest(c.Request.Context(), in)
		if errs != nil {
			fail(c, errs)
			return
		}
		ok(c, task, "Extension approved")
		return
	}
	ext, errs := tc.Workflows.RejectExtensionRequest(c.Request.Context(), in)
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, ext, "Extension rejected")
}

// GetHistory returns the audit trail. Access follows the task read rule.
func (tc *TaskController) GetHistory(c *gin.Context) {
	taskID, valid := pathID(c, "id")
	if !valid {
		return
	}
	items, errs := tc.Queries.GetTaskHistory(c.Request.Context(), taskID, middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, items, "")
}
