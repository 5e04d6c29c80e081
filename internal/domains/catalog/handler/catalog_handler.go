package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/internal/domains/catalog/service"
	"library-catalog/internal/shared/response"
)

type CatalogHandler struct {
	service service.ServiceInterface
}

func NewCatalogHandler(svc service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
	}
}

// ════════════════════════════════════════════════════════════════
// LIST: GET /v1/catalog
// ════════════════════════════════════════════════════════════════

func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	catalog, err := h.service.ListCatalog(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Get catalog successfully", catalog.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /v1/catalog/books
// ════════════════════════════════════════════════════════════════

func (h *CatalogHandler) CreateAuthorAndBook(c *gin.Context) {
	var req model.CreateAuthorAndBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		h.validationError(c, err)
		return
	}

	book, err := h.service.CreateAuthorAndBook(c.Request.Context(), req.Author, req.Book)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Create book successfully", book.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /v1/authors
// ════════════════════════════════════════════════════════════════

func (h *CatalogHandler) CreateAuthor(c *gin.Context) {
	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		h.validationError(c, err)
		return
	}

	author, err := h.service.CreateAuthor(c.Request.Context(), req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Create author successfully", author.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/authors/:id, GET /v1/books/:id
// ════════════════════════════════════════════════════════════════

func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Get author successfully", author.ToResponse())
}

func (h *CatalogHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Get book successfully", book.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /v1/authors/:id (cascades to books), DELETE /v1/books/:id
// ════════════════════════════════════════════════════════════════

func (h *CatalogHandler) DeleteAuthor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAuthor(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Delete author successfully", nil)
}

func (h *CatalogHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Delete book successfully", nil)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CatalogHandler) validationError(c *gin.Context, err error) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_NAME", "Validation failed", errs)
		return
	}
	response.BadRequest(c, err.Error())
}

func (h *CatalogHandler) handleError(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("catalog request failed")
		response.ErrorResponse(c, status, model.ToErrorCode(err), "Internal server error")
		return
	}
	response.ErrorResponse(c, status, model.ToErrorCode(err), err.Error())
}
