package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bloghub/internal/models"
)

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := models.GetPostBySlug(s.DB, r.PathValue("slug"))
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	// Same visibility rule as the detail view: a draft's slug must not
	// be confirmable by anyone but its author.
	if !post.Published() && post.AuthorID != user.ID {
		http.NotFound(w, r)
		return
	}
	detailURL := "/post/" + post.Slug + "/"
	if !post.AllowComments {
		s.setFlash(w, "error", "Comments are disabled for this post.")
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}
	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		s.setFlash(w, "error", "Error adding comment. Please try again.")
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}
	if err := models.CreateComment(s.DB, post.ID, user.ID, body); err != nil {
		s.serverError(w, err)
		return
	}
	s.setFlash(w, "success", "Comment added successfully!")
	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		http.NotFound(w, r)
		return
	}
	// Ownership is part of the lookup: a non-owner sees the same
	// not-found as a missing comment.
	postID, err := models.DeleteCommentByAuthor(s.DB, id, user.ID)
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	post, err := models.GetPostByID(s.DB, postID)
	if err != nil {
		http.Redirect(w, r, "/posts/", http.StatusSeeOther)
		return
	}
	s.setFlash(w, "success", "Comment deleted successfully!")
	http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
}
