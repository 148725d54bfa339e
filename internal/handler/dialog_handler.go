package handler

import (
	"errors"
	"net/http"

	"casedesk/internal/dialog"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// openDialog registers a confirmation owned by the caller and returns it with 202 Accepted
func (a *API) openDialog(c echo.Context, d dialog.Dialog, action dialog.Action) error {
	d.Kind = dialog.KindConfirm
	d.OwnerID = sessionOf(c).UserID
	opened, err := a.Dialogs.Open(d, action)
	if err != nil {
		return fail(c, "Failed to open dialog", err)
	}
	prometheus.RecordDialog("opened")
	logger.FromContext(c).Info("Confirmation requested",
		zap.String("dialog_id", opened.ID),
		zap.String("resource", opened.Resource),
		zap.String("record_id", opened.RecordID))
	return c.JSON(http.StatusAccepted, opened)
}

// GetDialog returns an open dialog of the caller
func (a *API) GetDialog(c echo.Context) error {
	d, err := a.Dialogs.Get(c.Param("id"), sessionOf(c).UserID)
	if err != nil {
		return fail(c, "Dialog not found", err)
	}
	return c.JSON(http.StatusOK, d)
}

// ConfirmDialog runs the dialog's action
func (a *API) ConfirmDialog(c echo.Context) error {
	d, err := a.Dialogs.Confirm(c.Request().Context(), c.Param("id"), sessionOf(c).UserID)
	if errors.Is(err, dialog.ErrNotFound) || errors.Is(err, dialog.ErrInvalidTransition) {
		return fail(c, "Dialog not found", err)
	}
	prometheus.RecordDialog("confirmed")
	if err != nil {
		return fail(c, "Action failed", err)
	}
	return c.JSON(http.StatusOK, d)
}

// CancelDialog closes the dialog without running its action
func (a *API) CancelDialog(c echo.Context) error {
	d, err := a.Dialogs.Cancel(c.Param("id"), sessionOf(c).UserID)
	if err != nil {
		return fail(c, "Dialog not found", err)
	}
	prometheus.RecordDialog("cancelled")
	return c.JSON(http.StatusOK, d)
}
