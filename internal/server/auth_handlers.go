package server

import (
	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles account registration. It does not sign the user in.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req credentials
	if !parseBody(c, &req) {
		return nil
	}
	if err := s.board.Register(c.UserContext(), req.Email, req.Password); err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
	})
}

// Login signs the user in and makes them the board's session user.
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if !parseBody(c, &req) {
		return nil
	}
	sess, err := s.board.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(sess)
}

// Logout ends the session and clears the user's vote markers.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.board.Logout(c.UserContext()); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetSession reports the board's session user.
func (s *Server) GetSession(c *fiber.Ctx) error {
	userID, ok := s.board.CurrentUser(c.UserContext())
	resp := fiber.Map{"authenticated": ok}
	if ok {
		resp["user_id"] = userID
	}
	return c.JSON(resp)
}
