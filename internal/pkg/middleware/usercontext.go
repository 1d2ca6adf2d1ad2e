package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/database"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/session"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a UserContext for every
// request. The plan is read session-first and loaded from the profile row
// once per session; it is display-only. Entitlement decisions (usage gate,
// analytics, export) resolve the plan live from the profile row instead,
// because webhooks change plans without access to the user's session.
func UserContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	uid, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || uid == 0 {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	plan := session.GetSessionValue(c, usercontext.KeyUserPlan)
	if plan == "" {
		plan = "free"
		if db := database.GetDB(); db != nil {
			if profile, err := models.GetOrCreateUserProfile(db, uid); err == nil && profile.Plan != "" {
				plan = profile.Plan
			}
		}
		// cache in session for subsequent requests
		_ = session.SetSessionValue(c, usercontext.KeyUserPlan, plan)
	}

	c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
		UserID:     uid,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Plan:       plan,
	})

	return c.Next()
}
