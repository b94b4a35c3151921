package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/technotes/notes-api/internal/api/metrics"
	"github.com/technotes/notes-api/internal/core/ports"
)

// NoteHandler handles HTTP requests for note management.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// List handles GET /notes.
//
// @Summary      List all notes
// @Description  Each note carries the username of the user it is assigned to.
// @Tags         notes
// @Produce      json
// @Success      200  {array}   ports.NoteView
// @Failure      400  {object}  errorResponse  "No notes found"
// @Failure      500  {object}  errorResponse
// @Router       /notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	notes, err := h.service.ListNotes(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

// Create handles POST /notes.
//
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        body  body      createNoteRequest  true  "New note"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Duplicate note title"
// @Failure      500   {object}  errorResponse
// @Router       /notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	var req createNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.CreateNote(c.Request().Context(), ports.CreateNoteInput{
		User:  req.User,
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("note", "create").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// Update handles PATCH /notes.
//
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        body  body      updateNoteRequest  true  "Note fields"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Duplicate note title"
// @Failure      500   {object}  errorResponse
// @Router       /notes [patch]
func (h *NoteHandler) Update(c echo.Context) error {
	var req updateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.UpdateNote(c.Request().Context(), ports.UpdateNoteInput{
		ID:        req.ID,
		User:      req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("note", "update").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Delete handles DELETE /notes.
//
// @Summary      Delete a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        body  body      deleteRequest  true  "Note ID"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse  "Note ID required"
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /notes [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	msg, err := h.service.DeleteNote(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("note", "delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
