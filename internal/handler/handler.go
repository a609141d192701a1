package handler

import (
	"net/http"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/dto"
	"saas-billing/internal/middleware"

	"github.com/labstack/echo/v4"
)

func respondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}

func currentUser(c echo.Context) (*auth.User, error) {
	user := middleware.UserFrom(c)
	if user == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	return user, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}
