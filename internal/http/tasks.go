package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue                TaskQueue
	courses              CourseStore
	auditRetentionInDays int
	log                  *logger.Logger
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, courses CourseStore, auditRetentionInDays int, log *logger.Logger) *TasksController {
	return &TasksController{
		queue:                queue,
		courses:              courses,
		auditRetentionInDays: auditRetentionInDays,
		log:                  log.With("component", "tasks_api"),
	}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "translation_push",
			Description: "Send a course's strings to the translation service",
			Queue:       tasks.TranslationPushTask{}.Config().Name,
		},
		{
			Type:        "translation_pull",
			Description: "Replace a course's translations with the latest ones",
			Queue:       tasks.TranslationPullTask{}.Config().Name,
		},
		{
			Type:        "cleanup_history",
			Description: "Remove activity log entries and finished render jobs past the retention period",
			Queue:       tasks.CleanupHistoryTask{}.Config().Name,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, tc.log, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// CourseID is required for the translation tasks
	CourseID string `json:"course_id,omitempty" form:"course_id"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")
	userID := GetUserID(c)

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBind(&req)
	}

	var task backlite.Task
	switch taskType {
	case "translation_push", "translation_pull":
		if req.CourseID == "" {
			respondBadRequest(c, "course_id is required for "+taskType)
			return
		}
		if _, err := tc.courses.GetForOwner(req.CourseID, userID); err != nil {
			respondDocumentError(c, tc.log, err, "load course")
			return
		}
		if taskType == "translation_push" {
			task = tasks.TranslationPushTask{CourseID: req.CourseID, UserID: userID}
		} else {
			task = tasks.TranslationPullTask{CourseID: req.CourseID, UserID: userID}
		}

	case "cleanup_history":
		task = tasks.CleanupHistoryTask{RetentionDays: tc.auditRetentionInDays}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ids, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, tc.log, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
