package handler

import (
	"github.com/labstack/echo/v4"

	"tsena/internal/usecase"
	"tsena/pkg/response"
)

type ProposalHandler struct {
	proposalUseCase *usecase.ProposalUseCase
}

func NewProposalHandler(proposalUseCase *usecase.ProposalUseCase) *ProposalHandler {
	return &ProposalHandler{
		proposalUseCase: proposalUseCase,
	}
}

type createProposalRequest struct {
	ProposedPrice float64 `json:"proposed_price" validate:"required,gt=0"`
}

type respondToProposalRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

func (h *ProposalHandler) CreateProposal(c echo.Context) error {
	var req createProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	proposal, err := h.proposalUseCase.CreateProposal(c.Request().Context(), userID, usecase.CreateProposalInput{
		ListingID:     c.Param("id"),
		ProposedPrice: req.ProposedPrice,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, proposal)
}

func (h *ProposalHandler) RespondToProposal(c echo.Context) error {
	var req respondToProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	proposal, err := h.proposalUseCase.RespondToProposal(c.Request().Context(), userID, usecase.RespondToProposalInput{
		ProposalID: c.Param("pid"),
		Accept:     req.Action == "accept",
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, proposal)
}
