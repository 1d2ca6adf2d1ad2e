package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/session"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new account, seeds its free plan record and logs
// the user in.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	exists, err := userRepo.EmailExists(req.Email)
	if err != nil {
		fiberlog.Errorf("[Auth] email lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "registration failed")
	}
	if exists {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	}

	user, err := models.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if err := userRepo.Create(user); err != nil {
		fiberlog.Errorf("[Auth] user create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "registration failed")
	}

	// Every account starts with a free plan record
	if _, err := repository.GetGlobalFactory().GetProfileRepository().GetOrCreate(user.ID); err != nil {
		fiberlog.Errorf("[Auth] plan record create failed for user %d: %v", user.ID, err)
	}

	if err := startUserSession(c, user); err != nil {
		fiberlog.Errorf("[Auth] session start failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// HandleLogin authenticates by email and password.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()

	user, err := userRepo.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "email or password is wrong")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_disabled", "this account is disabled")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := userRepo.Update(user); err != nil {
		fiberlog.Warnf("[Auth] last login update failed for user %d: %v", user.ID, err)
	}

	if err := startUserSession(c, user); err != nil {
		fiberlog.Errorf("[Auth] session start failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error", "login failed")
	}

	return c.JSON(fiber.Map{"user": user})
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store != nil {
		if sess, err := store.Get(c); err == nil {
			if err := sess.Destroy(); err != nil {
				fiberlog.Warnf("[Auth] session destroy failed: %v", err)
			}
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}

func startUserSession(c *fiber.Ctx, user *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return fiber.ErrInternalServerError
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	// Plan is cached lazily by the user context middleware
	sess.Delete(usercontext.KeyUserPlan)

	return sess.Save()
}
