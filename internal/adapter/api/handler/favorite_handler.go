package handler

import (
	"github.com/labstack/echo/v4"

	"tsena/internal/usecase"
	"tsena/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

type addFavoriteRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	var req addFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	favorite, err := h.favoriteUseCase.AddFavorite(c.Request().Context(), userID, req.ListingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, favorite)
}
