package server

import (
	"forum/internal/models"
	"forum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile returns a user's public profile (public)
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetPublicProfile(c.UserContext(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile returns the caller's own profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile changes any of username, avatar, bio and tag.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Avatar   *string `json:"avatar"`
		Bio      *string `json:"bio"`
		Tag      *string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Avatar:   req.Avatar,
		Bio:      req.Bio,
		Tag:      req.Tag,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetDailyTasks returns today's task flags for the caller.
func (s *Server) GetDailyTasks(c *fiber.Ctx) error {
	view, err := s.dailyTaskService.GetToday(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// CompleteDailyTask marks one of today's tasks done.
func (s *Server) CompleteDailyTask(c *fiber.Ctx) error {
	var req struct {
		TaskType string `json:"taskType"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	res, err := s.dailyTaskService.Complete(c.UserContext(), currentUserID(c), req.TaskType)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}
