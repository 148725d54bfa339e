package handler

import (
	"net/http"

	"casedesk/internal/casework"
	"casedesk/internal/listview"
	"casedesk/internal/model"
	"casedesk/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrganizationRequest is the body of organization create and update requests
type OrganizationRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contact_email"`
}

// ListOrganizations lists every organization, archived ones included
func (a *API) ListOrganizations(c echo.Context) error {
	orgs := a.Orgs.List(c.Request().Context(), a.notifier(c))
	q := listview.ParseQuery(c.QueryParams(), casework.Categories(casework.OrganizationView))
	return c.JSON(http.StatusOK, casework.OrganizationView.Apply(orgs, q))
}

func (a *API) GetOrganization(c echo.Context) error {
	org, err := a.Orgs.Get(c.Request().Context(), c.Param("id"), a.notifier(c))
	if err != nil {
		return fail(c, "Organization not found", err)
	}
	return c.JSON(http.StatusOK, org)
}

func (a *API) CreateOrganization(c echo.Context) error {
	var req OrganizationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	org, err := a.Orgs.Create(c.Request().Context(), model.Organization{
		Name:         req.Name,
		Slug:         req.Slug,
		ContactEmail: req.ContactEmail,
	}, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to create organization", err)
	}
	logger.FromContext(c).Info("Organization created", zap.String("id", org.ID), zap.String("slug", org.Slug))
	return c.JSON(http.StatusCreated, org)
}

func (a *API) UpdateOrganization(c echo.Context) error {
	var req OrganizationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	org, err := a.Orgs.Update(c.Request().Context(), c.Param("id"), func(o model.Organization) model.Organization {
		o.Name = req.Name
		if req.Slug != "" {
			o.Slug = req.Slug
		}
		o.ContactEmail = req.ContactEmail
		return o
	}, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to update organization", err)
	}
	return c.JSON(http.StatusOK, org)
}

// ArchiveOrganization soft-deletes an organization
func (a *API) ArchiveOrganization(c echo.Context) error {
	org, err := a.Orgs.Archive(c.Request().Context(), c.Param("id"), a.notifier(c))
	if err != nil {
		return fail(c, "Failed to archive organization", err)
	}
	logger.FromContext(c).Info("Organization archived", zap.String("id", org.ID))
	return c.JSON(http.StatusOK, org)
}

func (a *API) RestoreOrganization(c echo.Context) error {
	org, err := a.Orgs.Restore(c.Request().Context(), c.Param("id"), a.notifier(c))
	if err != nil {
		return fail(c, "Failed to restore organization", err)
	}
	return c.JSON(http.StatusOK, org)
}
