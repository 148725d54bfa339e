package handler

import (
	"net/http"

	"casedesk/internal/model"
	"casedesk/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// clientRecords answers a per-client list request
func clientRecords[T any](c echo.Context, what string, load func() ([]T, error)) error {
	records, err := load()
	if err != nil {
		return fail(c, "Failed to load "+what, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": records, "total": len(records)})
}

func badRequest(c echo.Context, err error) error {
	logger.FromContext(c).Error("Invalid request data", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
}

func (a *API) Timeline(c echo.Context) error {
	return clientRecords(c, "timeline", func() ([]model.TimelineEvent, error) {
		return a.Service.Timeline(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	})
}

func (a *API) AddNote(c echo.Context) error {
	var in model.TimelineEvent
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	out, err := a.Service.AddNote(c.Request().Context(), sessionOf(c).scope(), c.Param("id"), in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to add note", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (a *API) Interactions(c echo.Context) error {
	return clientRecords(c, "interactions", func() ([]model.Interaction, error) {
		return a.Service.Interactions(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	})
}

func (a *API) LogInteraction(c echo.Context) error {
	var in model.Interaction
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	sess := sessionOf(c)
	out, err := a.Service.LogInteraction(c.Request().Context(), sess.scope(), c.Param("id"), sess.UserID, in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to log interaction", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (a *API) Progress(c echo.Context) error {
	return clientRecords(c, "journey progress", func() ([]model.JourneyProgress, error) {
		return a.Service.Progress(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	})
}

func (a *API) RecordProgress(c echo.Context) error {
	var in model.JourneyProgress
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	out, err := a.Service.RecordProgress(c.Request().Context(), sessionOf(c).scope(), c.Param("id"), in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to record progress", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (a *API) Results(c echo.Context) error {
	return clientRecords(c, "assessment results", func() ([]model.AssessmentResult, error) {
		return a.Service.Results(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	})
}

func (a *API) SubmitResult(c echo.Context) error {
	var in model.AssessmentResult
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	out, err := a.Service.SubmitResult(c.Request().Context(), sessionOf(c).scope(), c.Param("id"), in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to submit assessment result", err)
	}
	return c.JSON(http.StatusCreated, out)
}
