package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListPosts applies the sort and search query parameters and returns the
// home view.
// GET /api/posts?sort=created_time|upvotes&q=term
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	// Both parameters describe the whole view; an absent one resets to its
	// default.
	if err := s.board.SetSort(ctx, c.Query("sort")); err != nil {
		return respondErr(c, err)
	}
	if err := s.board.SetSearch(ctx, c.Query("q")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(s.board.Home())
}

// CreatePost publishes a post as the session user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	post, err := s.board.CreatePost(c.UserContext(), req.Title, req.Content, req.ImageURL)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost opens the post as the detail view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := s.board.OpenPost(ctx, c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	view, _ := s.board.Post(ctx)
	return c.JSON(view)
}

// UpdatePost replaces the post's content if the session user owns it.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if !parseBody(c, &req) {
		return nil
	}
	applied, err := s.board.EditPost(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return respondApplied(c, applied, "Only the author can edit this post")
}

// DeletePost deletes the post if the session user owns it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	applied, err := s.board.DeletePost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return respondApplied(c, applied, "Only the author can delete this post")
}

// UpvotePost toggles the session user's vote.
func (s *Server) UpvotePost(c *fiber.Ctx) error {
	count, err := s.board.Upvote(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"upvotes": count})
}
