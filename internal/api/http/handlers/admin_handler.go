package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/noryangjin/auction-server/internal/api/dto"
	"github.com/noryangjin/auction-server/internal/auth"
	apperrors "github.com/noryangjin/auction-server/pkg/util/errorutil"
)

// AdminHandler exposes account administration.
type AdminHandler struct {
	accounts AccountService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ChangeUserStatus handles PATCH /admin/users/:id/status.
func (h *AdminHandler) ChangeUserStatus(c *fiber.Ctx) error {
	admin, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewForbidden("admin role required")
	}
	var req dto.UserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.accounts.ChangeStatus(c.UserContext(), admin, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
