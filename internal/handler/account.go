package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/service"
)

// AccountHandler serves registration, login and the caller's profile.
type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ----- DTOs -----

type clubRegisterReq struct {
	ClubName string `json:"clubName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type studentRegisterReq struct {
	Name      string `json:"name" validate:"required"`
	RbtNumber string `json:"rbtNumber" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterClub: POST /clubs/register
func (h *AccountHandler) RegisterClub(c echo.Context) error {
	var req clubRegisterReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.accounts.RegisterClub(ctx, service.ClubRegistration{
		ClubName: req.ClubName, Email: req.Email, Password: req.Password,
	})
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, sess)
}

// LoginClub: POST /clubs/login
func (h *AccountHandler) LoginClub(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.accounts.LoginClub(ctx, req.Email, req.Password)
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, sess)
}

// RegisterStudent: POST /students/register
func (h *AccountHandler) RegisterStudent(c echo.Context) error {
	var req studentRegisterReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.accounts.RegisterStudent(ctx, service.StudentRegistration{
		Name: req.Name, RbtNumber: req.RbtNumber, Email: req.Email, Password: req.Password,
	})
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, sess)
}

// LoginStudent: POST /students/login
func (h *AccountHandler) LoginStudent(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.accounts.LoginStudent(ctx, req.Email, req.Password)
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, sess)
}

// Me: GET /me returns the profile of the authenticated caller.
func (h *AccountHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.accounts.Profile(ctx, p)
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, profile)
}
