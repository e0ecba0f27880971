package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/middleware"
)

// Handlers groups the API handlers mounted by RegisterRoutes.
type Handlers struct {
	Session    *SessionHandler
	Schedule   *ScheduleHandler
	Class      *ClassHandler
	Preference *PreferenceHandler
	Profile    *ProfileHandler
	Dashboard  *DashboardHandler
	Export     *ExportHandler
}

// RegisterRoutes mounts the API on r. Catalog reads accept anonymous
// visitors; anything touching per-user state requires a session token.
func RegisterRoutes(r gin.IRouter, h Handlers, sessions middleware.SessionResolver) {
	r.POST("/sessions", h.Session.Start)
	r.GET("/exports/download/:token", h.Export.Download)

	open := r.Group("", middleware.OptionalSession(sessions))
	open.GET("/classes", h.Schedule.List)
	open.GET("/classes/upcoming", h.Schedule.Upcoming)
	open.GET("/classes/featured", h.Schedule.Featured)
	open.GET("/classes/:id", h.Schedule.Get)
	open.GET("/schedule", h.Schedule.Schedule)
	open.GET("/filters/options", h.Schedule.FilterOptions)
	open.GET("/styles", h.Schedule.Styles)
	open.GET("/choreographers/:username", h.Profile.Public)
	open.POST("/videos/validate", h.Profile.ValidateVideo)

	secured := r.Group("", middleware.Session(sessions))
	secured.GET("/session", h.Session.Current)
	secured.DELETE("/session", h.Session.Clear)
	secured.PUT("/session/user", h.Session.SwitchUser)
	secured.PUT("/session/role", h.Session.SwitchRole)

	secured.POST("/classes/:id/interest", h.Preference.ToggleInterest)
	secured.POST("/classes/:id/attendance", h.Preference.ToggleAttendance)
	secured.POST("/choreographers/:id/favorite", h.Preference.ToggleFavorite)
	secured.GET("/preferences", h.Preference.Preferences)
	secured.GET("/settings", h.Preference.Settings)
	secured.PUT("/settings", h.Preference.SaveSettings)

	secured.GET("/profile", h.Profile.Get)
	secured.PUT("/profile", h.Profile.Update)
	secured.GET("/dashboard", h.Dashboard.Get)
	secured.GET("/me/classes", h.Schedule.Owned)

	secured.POST("/exports", h.Export.Create)
	secured.GET("/exports/:id", h.Export.Status)

	teaching := secured.Group("", middleware.RequireChoreographer())
	teaching.POST("/classes", h.Class.Create)
	teaching.PUT("/classes/:id", h.Class.Update)
	teaching.PATCH("/classes/:id/status", h.Class.Transition)
	teaching.DELETE("/classes/:id", h.Class.Delete)
}
