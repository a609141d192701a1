package handler

import (
	"net/http"
	"saas-billing/internal/openapi"

	"github.com/labstack/echo/v4"
)

type DocsHandler struct {
	doc *openapi.Document
}

func NewDocsHandler(doc *openapi.Document) *DocsHandler {
	return &DocsHandler{doc: doc}
}

// Get serves the OpenAPI document as JSON, or YAML with ?format=yaml.
//
// @Summary OpenAPI document
// @Tags docs
// @Param format query string false "yaml for YAML output"
// @Success 200
// @Router /api/v1/docs [get]
func (h *DocsHandler) Get(c echo.Context) error {
	if c.QueryParam("format") != "yaml" {
		return c.JSON(http.StatusOK, h.doc)
	}
	out, err := h.doc.YAML()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/yaml", out)
}
