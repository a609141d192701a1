package handler

import (
	"saas-billing/internal/dto"
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	favoriteService service.FavoriteService
}

func NewFavoriteHandler(favoriteService service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
	}
}

// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	favorites, err := h.favoriteService.List(ctx, user.ID)
	if err != nil {
		return err
	}

	return respondOK(c, favorites)
}

// @Summary Add a favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Param body body dto.FavoriteRequest true "item"
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/favorites [post]
func (h *FavoriteHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.FavoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	favorite, err := h.favoriteService.Add(ctx, user.ID, req.ItemID, req.ItemType)
	if err != nil {
		return err
	}

	return respondOK(c, favorite)
}

// @Summary Remove a favorite
// @Tags favorites
// @Produce json
// @Param itemId path string true "item id"
// @Success 200 {object} dto.Response
// @Security bearerAuth
// @Router /api/v1/favorites/{itemId} [delete]
func (h *FavoriteHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.favoriteService.Remove(ctx, user.ID, c.Param("itemId")); err != nil {
		return err
	}

	return respondOK(c, nil)
}
