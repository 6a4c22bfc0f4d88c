package handler

import (
	"github.com/labstack/echo/v4"

	"tsena/internal/usecase"
	"tsena/pkg/response"
)

type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

func (h *ReportHandler) FileReport(c echo.Context) error {
	var req usecase.FileReportInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	report, err := h.reportUseCase.FileReport(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, report)
}

// ResolveReport is reserved for moderators. Caller access is enforced
// by the admin middleware on the route.
func (h *ReportHandler) ResolveReport(c echo.Context) error {
	var req usecase.ResolveReportInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	report, err := h.reportUseCase.ResolveReport(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, report)
}
