package handler

import (
	"net/http"
	"strconv"

	"casedesk/internal/form"
	"casedesk/internal/recordstore"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type sectionBody struct {
	Title string `json:"title"`
}

type questionBody struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type optionBody struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// mountTemplateEditing registers the nested section, question and option
// routes of assessment templates. Positions in the path are zero based.
func (a *API) mountTemplateEditing(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/:id/sections", editTemplate(a, func(e *form.TemplateEditor, _ []int, b sectionBody) bool {
		return e.AddSection(b.Title)
	}), m...)
	g.PUT("/:id/sections/:s", editTemplate(a, func(e *form.TemplateEditor, at []int, b sectionBody) bool {
		return e.RenameSection(at[0], b.Title)
	}, "s"), m...)
	g.DELETE("/:id/sections/:s", editTemplate(a, func(e *form.TemplateEditor, at []int, _ struct{}) bool {
		return e.RemoveSection(at[0])
	}, "s"), m...)

	g.POST("/:id/sections/:s/questions", editTemplate(a, func(e *form.TemplateEditor, at []int, b questionBody) bool {
		return e.AddQuestion(at[0], b.Text, b.Type)
	}, "s"), m...)
	g.PUT("/:id/sections/:s/questions/:q", editTemplate(a, func(e *form.TemplateEditor, at []int, b questionBody) bool {
		return e.UpdateQuestion(at[0], at[1], b.Text, b.Required)
	}, "s", "q"), m...)
	g.DELETE("/:id/sections/:s/questions/:q", editTemplate(a, func(e *form.TemplateEditor, at []int, _ struct{}) bool {
		return e.RemoveQuestion(at[0], at[1])
	}, "s", "q"), m...)

	g.POST("/:id/sections/:s/questions/:q/options", editTemplate(a, func(e *form.TemplateEditor, at []int, b optionBody) bool {
		return e.AddOption(at[0], at[1], b.Label, b.Score)
	}, "s", "q"), m...)
	g.DELETE("/:id/sections/:s/questions/:q/options/:o", editTemplate(a, func(e *form.TemplateEditor, at []int, _ struct{}) bool {
		return e.RemoveOption(at[0], at[1], at[2])
	}, "s", "q", "o"), m...)
}

// editTemplate builds a handler that parses the named position parameters and
// the request body, then applies edit to the template with the id in the path
func editTemplate[B any](a *API, edit func(e *form.TemplateEditor, at []int, body B) bool, params ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		at := make([]int, len(params))
		for i, p := range params {
			v, err := strconv.Atoi(c.Param(p))
			if err != nil {
				log.Warn("Invalid position", zap.String("param", p), zap.String("value", c.Param(p)))
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position " + p})
			}
			at[i] = v
		}
		var body B
		if err := c.Bind(&body); err != nil {
			return badRequest(c, err)
		}

		prometheus.RecordOperation(recordstore.KeyAssessmentTemplates, "edit")
		id := c.Param("id")
		tmpl, err := a.Service.EditTemplate(c.Request().Context(), sessionOf(c).scope(), id, a.notifier(c),
			func(e *form.TemplateEditor) bool { return edit(e, at, body) })
		if err != nil {
			return fail(c, "Failed to edit assessment template", err)
		}
		log.Info("Assessment template edited", zap.String("id", id), zap.String("route", c.Path()))
		return c.JSON(http.StatusOK, tmpl)
	}
}
