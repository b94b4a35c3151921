package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/technotes/notes-api/internal/api/metrics"
	"github.com/technotes/notes-api/internal/core/ports"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      400  {object}  errorResponse  "No users found"
// @Failure      500  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Duplicate username"
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("user", "create").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// Update handles PATCH /users.
//
// @Summary      Update a user
// @Description  Replaces username, roles and active. The password is only changed when given.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "User fields"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Duplicate username"
// @Failure      500   {object}  errorResponse
// @Router       /users [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.UpdateUser(c.Request().Context(), ports.UpdateUserInput{
		ID:       req.ID,
		Username: req.Username,
		Roles:    req.Roles,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("user", "update").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Delete handles DELETE /users.
//
// @Summary      Delete a user
// @Description  Fails with 409 while any note is assigned to the user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      deleteRequest  true  "User ID"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse  "User ID required"
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "User has assigned notes"
// @Failure      500   {object}  errorResponse
// @Router       /users [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}

	msg, err := h.service.DeleteUser(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	metrics.ResourceOperationsTotal.WithLabelValues("user", "delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
