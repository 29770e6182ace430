package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/internal/constants"
	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/middleware"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/internal/service"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
	"github.com/roomloop/flatmarket/pkg/validation"
)

type FlatHandler struct {
	flatService *service.FlatService
}

func NewFlatHandler(flatService *service.FlatService) *FlatHandler {
	return &FlatHandler{flatService: flatService}
}

// List returns a page of active flats matching the filter query. Browsing
// is public; no session is required here.
func (h *FlatHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListFlats")

	var filter dto.FlatFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return
	}

	// Admins see inactive listings too
	if claims, ok := middleware.ClaimsFromContext(c); ok && claims.Role == model.RoleAdmin {
		filter.IncludeInactive = c.Query("include_inactive") == "true"
	}

	pagination := constants.ParsePaginationParams(c)

	flats, total, err := h.flatService.List(ctx, filter, pagination.Limit, pagination.Offset)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to list flats").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	pageTotal := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, flats))
}

// GetByID returns one flat.
func (h *FlatHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetFlat")

	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("invalid flat id", nil))
		return
	}

	flat, err := h.flatService.GetByID(ctx, id)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewFlatResponse(flat))
}

// Mine returns the caller's own listings, including inactive ones.
func (h *FlatHandler) Mine(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "MyFlats")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	flats, err := h.flatService.ListByOwner(ctx, claims.UserID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	responses := make([]dto.FlatResponse, 0, len(flats))
	for i := range flats {
		responses = append(responses, dto.NewFlatResponse(&flats[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// Create inserts a new listing owned by the caller.
func (h *FlatHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateFlat")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	var req dto.CreateFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid flat payload").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	flat, err := h.flatService.Create(ctx, claims.UserID, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to create flat").
			Uint("user_id", claims.UserID).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, dto.NewFlatResponse(flat))
}

// Update applies a partial edit to a listing.
func (h *FlatHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateFlat")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("invalid flat id", nil))
		return
	}

	var req dto.UpdateFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	flat, err := h.flatService.Update(ctx, claims, id, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewFlatResponse(flat))
}

// Delete removes a listing.
func (h *FlatHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "DeleteFlat")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("invalid flat id", nil))
		return
	}

	if err := h.flatService.Delete(ctx, claims, id); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}
