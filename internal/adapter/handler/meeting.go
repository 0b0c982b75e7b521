package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/errors"
	dto "github.com/meetmate-team/meetmate-backend/internal/adapter/dto/meeting"
	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/internal/domain/repositories"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/cache"
	pkgjwt "github.com/meetmate-team/meetmate-backend/pkg/jwt"
)

// Scheduler enqueues a pipeline job; implemented by pipeline.Launcher
type Scheduler interface {
	Schedule(job entities.PipelineJob) error
}

// MeetingHandler handles the endpoint that triggers meeting processing
type MeetingHandler struct {
	store    repositories.RecordStore
	launcher Scheduler
	guard    cache.MeetingGuard
	logger   *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(store repositories.RecordStore, launcher Scheduler, guard cache.MeetingGuard, logger *zap.Logger) *MeetingHandler {
	return &MeetingHandler{
		store:    store,
		launcher: launcher,
		guard:    guard,
		logger:   logger,
	}
}

// Process starts background processing of a meeting recording. The response
// acknowledges scheduling only; the pipeline outcome is observable solely
// through the record's eventual state and the push notification.
func (h *MeetingHandler) Process(c echo.Context) error {
	var req dto.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if _, err := uuid.Parse(req.MeetingID); err != nil {
		return h.respondFailure(c, errors.ErrInvalidArgument("meeting_id must be a UUID"))
	}

	// An already-expired session would fail every store call the pipeline
	// makes; refuse up front instead of scheduling doomed work.
	if pkgjwt.SessionExpired(req.Session.AccessToken, time.Now()) {
		return h.respondFailure(c, errors.ErrSessionExpired())
	}

	ctx := c.Request().Context()

	// Verify the meeting exists and resolve its owner and display name.
	record, err := h.store.GetMeeting(ctx, req.MeetingID, req.Session.AccessToken)
	if err != nil {
		return h.respondFailure(c, errors.ErrStoreFailed("verify meeting", err))
	}
	if record == nil {
		return h.respondFailure(c, errors.ErrMeetingNotFound(req.MeetingID))
	}

	// Claim the meeting so two concurrent triggers cannot race on the final
	// record patch.
	acquired, err := h.guard.Acquire(ctx, req.MeetingID)
	if err != nil {
		return h.respondFailure(c, errors.ErrSchedulingFailed(err))
	}
	if !acquired {
		return h.respondFailure(c, errors.ErrAlreadyProcessing(req.MeetingID))
	}

	job := entities.PipelineJob{
		MeetingID:   req.MeetingID,
		AudioURL:    req.AudioURL,
		UserID:      record.UserID,
		AccessToken: req.Session.AccessToken,
		MeetingName: record.DisplayName(),
	}

	if err := h.launcher.Schedule(job); err != nil {
		h.guard.Release(ctx, req.MeetingID)
		return h.respondFailure(c, errors.ErrSchedulingFailed(err))
	}

	if h.logger != nil {
		h.logger.Info("meeting processing scheduled",
			zap.String("meeting_id", req.MeetingID),
			zap.String("user_id", record.UserID),
		)
	}

	return c.JSON(http.StatusOK, dto.ProcessResponse{
		Success: true,
		Message: "Processing started",
	})
}

// respondFailure logs the error and acknowledges the request with
// success=false. The caller only learns that scheduling did not happen.
func (h *MeetingHandler) respondFailure(c echo.Context, appErr errors.AppError) error {
	if h.logger != nil {
		h.logger.Error("failed to schedule meeting processing",
			zap.String("request_id", getRequestID(c)),
			zap.Any("app_code", appErr.Code),
			zap.Error(appErr),
		)
	}
	return c.JSON(appErr.HTTPCode, dto.ProcessResponse{
		Success: false,
		Message: appErr.Message,
	})
}
