package router

import (
	"tsena/internal/adapter/api/handler"
	"tsena/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupMarketplaceRouter wires the endpoints whose side effect is a
// notification fan-out: price proposals, favorites and reports.
func SetupMarketplaceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	proposalHandler := handler.GetProposalHandler()
	favoriteHandler := handler.GetFavoriteHandler()
	reportHandler := handler.GetReportHandler()

	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)
	listings.POST("/:id/proposals", proposalHandler.CreateProposal)      // POST /v1/listings/:id/proposals - Offer a price
	listings.PUT("/:id/proposals/:pid", proposalHandler.RespondToProposal) // PUT /v1/listings/:id/proposals/:pid - Accept or reject

	favorites := e.Group("/v1/favorites")
	favorites.Use(authMiddleware.Authenticate)
	favorites.POST("", favoriteHandler.AddFavorite) // POST /v1/favorites - Favorite a listing

	reports := e.Group("/v1/reports")
	reports.Use(authMiddleware.Authenticate)
	reports.POST("", reportHandler.FileReport) // POST /v1/reports - File a report

	reports.PUT("/:id/resolve", reportHandler.ResolveReport, adminMiddleware.AdminOnly) // PUT /v1/reports/:id/resolve - Moderator outcome
}
