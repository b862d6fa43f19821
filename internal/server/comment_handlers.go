package server

import (
	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// ListComments returns the display comments of a post.
func (s *Server) ListComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.board.OpenPost(ctx, c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	view, _ := s.board.Post(ctx)
	return c.JSON(view.Comments)
}

// CreateComment adds a comment from the detail view.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if !parseBody(c, &req) {
		return nil
	}
	comment, err := s.board.AddComment(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment replaces a comment's content if the session user owns it.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req commentRequest
	if !parseBody(c, &req) {
		return nil
	}
	applied, err := s.board.EditComment(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return respondApplied(c, applied, "Only the author can edit this comment")
}

// DeleteComment removes a comment if the session user owns it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	applied, err := s.board.DeleteComment(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respondApplied(c, applied, "Only the author can delete this comment")
}

// SaveCommentDraft stores the home view's unsent comment for a post.
func (s *Server) SaveCommentDraft(c *fiber.Ctx) error {
	var req commentRequest
	if !parseBody(c, &req) {
		return nil
	}
	s.board.SetCommentDraft(c.Params("id"), req.Content)
	return c.SendStatus(fiber.StatusNoContent)
}

// SubmitCommentDraft posts the saved draft for a post.
func (s *Server) SubmitCommentDraft(c *fiber.Ctx) error {
	comment, err := s.board.SubmitCommentDraft(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
