package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"bloghub/internal/models"
)

// Page is one slice of a paginated post listing.
type Page struct {
	Number     int
	TotalItems int
	TotalPages int
	Posts      []models.Post
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }

// paginate counts the filtered set and fetches one page of it. A bad or
// out-of-range page number clamps instead of failing.
func (s *Server) paginate(f models.PostFilter, pageParam string) (*Page, error) {
	total, err := models.CountPosts(s.DB, f)
	if err != nil {
		return nil, err
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	n, err := strconv.Atoi(pageParam)
	if err != nil || n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	f.Limit = pageSize
	f.Offset = (n - 1) * pageSize
	posts, err := models.ListPosts(s.DB, f)
	if err != nil {
		return nil, err
	}
	return &Page{Number: n, TotalItems: total, TotalPages: pages, Posts: posts}, nil
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	log.Printf("server error: %v", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := models.ListPosts(s.DB, models.PostFilter{
		Status:       models.StatusPublished,
		FeaturedOnly: true,
		Limit:        featuredLimit,
	})
	if err != nil {
		s.serverError(w, err)
		return
	}
	totalPosts, err := models.CountPosts(s.DB, models.PostFilter{Status: models.StatusPublished})
	if err != nil {
		s.serverError(w, err)
		return
	}
	totalAuthors, err := models.CountDistinctAuthors(s.DB)
	if err != nil {
		s.serverError(w, err)
		return
	}
	topics, err := models.FeaturedTopics(s.DB, topicsLimit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "home", map[string]any{
		"FeaturedPosts":  featured,
		"TotalPosts":     totalPosts,
		"TotalAuthors":   totalAuthors,
		"FeaturedTopics": topics,
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "about", map[string]any{
		"Mission": "Empowering writers to share their stories with the world",
		"Values":  []string{"Creativity", "Community", "Quality Content", "Freedom of Expression"},
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		name := strings.TrimSpace(r.FormValue("name"))
		email := strings.TrimSpace(r.FormValue("email"))
		subject := strings.TrimSpace(r.FormValue("subject"))
		message := strings.TrimSpace(r.FormValue("message"))
		switch {
		case name == "" || email == "" || subject == "" || message == "":
			s.setFlash(w, "error", "Please fill in all fields.")
		case !strings.Contains(email, "@"):
			s.setFlash(w, "error", "Please enter a valid email address.")
		default:
			// Nothing is persisted or delivered; the submission is only logged.
			log.Printf("contact form: name=%q email=%q subject=%q", name, email, subject)
			s.setFlash(w, "success", "Thank you "+name+"! We received your message and will respond soon.")
		}
		http.Redirect(w, r, "/contact/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "contact", nil)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.paginate(models.PostFilter{Status: models.StatusPublished}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "posts", map[string]any{
		"PageTitle": "All Blog Posts",
		"Page":      page,
	})
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	post, err := models.GetPostBySlug(s.DB, r.PathValue("slug"))
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	user := s.currentUser(r)
	// Drafts are visible only to their author.
	if !post.Published() && (user == nil || user.ID != post.AuthorID) {
		http.NotFound(w, r)
		return
	}
	if err := models.IncrementViews(s.DB, post.ID); err != nil {
		s.serverError(w, err)
		return
	}
	post.ViewsCount++
	related, err := models.ListRelated(s.DB, post.CategoryID, post.ID, relatedLimit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	comments, err := models.ListApprovedComments(s.DB, post.ID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "post_detail", map[string]any{
		"User":         user,
		"Post":         post,
		"RelatedPosts": related,
		"Comments":     comments,
	})
}

// resolvePostForm turns the form's category selection and tag side
// channel into rows. A missing category becomes a field error; only
// datastore failures return a non-nil error.
func (s *Server) resolvePostForm(f *PostForm) (int, []int, error) {
	categoryID := f.CategoryID
	if f.NewCategory != "" {
		cat, err := models.GetOrCreateCategory(s.DB, f.NewCategory)
		if err != nil {
			return 0, nil, err
		}
		categoryID = cat.ID
	} else if _, err := models.GetCategoryByID(s.DB, categoryID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			f.Errors["category"] = "Choose a valid category"
			return 0, nil, nil
		}
		return 0, nil, err
	}
	seen := map[int]bool{}
	var tagIDs []int
	for _, id := range f.TagIDs {
		if !seen[id] {
			seen[id] = true
			tagIDs = append(tagIDs, id)
		}
	}
	for _, name := range splitTags(f.NewTags) {
		tag, err := models.GetOrCreateTag(s.DB, name)
		if err != nil {
			return 0, nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tagIDs = append(tagIDs, tag.ID)
		}
	}
	return categoryID, tagIDs, nil
}

func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, user *models.User, f *PostForm, post *models.Post, flash *Flash) {
	categories, err := models.ListCategories(s.DB)
	if err != nil {
		s.serverError(w, err)
		return
	}
	tags, err := models.ListTags(s.DB)
	if err != nil {
		s.serverError(w, err)
		return
	}
	selected := map[int]bool{}
	for _, id := range f.TagIDs {
		selected[id] = true
	}
	data := map[string]any{
		"User":         user,
		"Form":         f,
		"Post":         post,
		"Categories":   categories,
		"Tags":         tags,
		"SelectedTags": selected,
	}
	if flash != nil {
		data["Flash"] = flash
	}
	s.render(w, r, "post_form", data)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request, user *models.User) {
	if r.Method != http.MethodPost {
		s.renderPostForm(w, r, user, &PostForm{AllowComments: true, Errors: map[string]string{}}, nil, nil)
		return
	}
	f := parsePostForm(r)
	if !f.Valid() {
		s.renderPostForm(w, r, user, f, nil, &Flash{Level: "error", Message: "Please correct the errors below."})
		return
	}
	categoryID, tagIDs, err := s.resolvePostForm(f)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if len(f.Errors) > 0 {
		s.renderPostForm(w, r, user, f, nil, &Flash{Level: "error", Message: "Please correct the errors below."})
		return
	}
	post := &models.Post{
		AuthorID:      user.ID, // always the session user, never a submitted value
		CategoryID:    categoryID,
		Title:         f.Title,
		Excerpt:       f.Excerpt,
		Content:       f.Content,
		Status:        f.Status,
		IsFeatured:    f.IsFeatured,
		AllowComments: f.AllowComments,
	}
	if err := models.CreatePost(s.DB, post, tagIDs); err != nil {
		s.serverError(w, err)
		return
	}
	s.setFlash(w, "success", "Post created successfully!")
	http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := models.GetPostBySlug(s.DB, r.PathValue("slug"))
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	if post.AuthorID != user.ID {
		s.setFlash(w, "error", "You can only edit your own posts!")
		http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		f := &PostForm{
			Title:         post.Title,
			Excerpt:       post.Excerpt,
			Content:       post.Content,
			CategoryID:    post.CategoryID,
			Status:        post.Status,
			IsFeatured:    post.IsFeatured,
			AllowComments: post.AllowComments,
			Errors:        map[string]string{},
		}
		for _, t := range post.Tags {
			f.TagIDs = append(f.TagIDs, t.ID)
		}
		s.renderPostForm(w, r, user, f, post, nil)
		return
	}
	f := parsePostForm(r)
	if !f.Valid() {
		s.renderPostForm(w, r, user, f, post, &Flash{Level: "error", Message: "Please correct the errors below."})
		return
	}
	categoryID, tagIDs, err := s.resolvePostForm(f)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if len(f.Errors) > 0 {
		s.renderPostForm(w, r, user, f, post, &Flash{Level: "error", Message: "Please correct the errors below."})
		return
	}
	post.Title = f.Title
	post.Excerpt = f.Excerpt
	post.Content = f.Content
	post.CategoryID = categoryID
	post.Status = f.Status
	post.IsFeatured = f.IsFeatured
	post.AllowComments = f.AllowComments
	if err := models.UpdatePost(s.DB, post, tagIDs); err != nil {
		s.serverError(w, err)
		return
	}
	s.setFlash(w, "success", "Post updated successfully!")
	http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request, user *models.User) {
	post, err := models.GetPostBySlug(s.DB, r.PathValue("slug"))
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	if post.AuthorID != user.ID {
		s.setFlash(w, "error", "You can only delete your own posts!")
		http.Redirect(w, r, "/post/"+post.Slug+"/", http.StatusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		s.render(w, r, "post_confirm_delete", map[string]any{"User": user, "Post": post})
		return
	}
	if err := models.DeletePost(s.DB, post.ID); err != nil {
		s.serverError(w, err)
		return
	}
	s.setFlash(w, "success", "Post deleted successfully!")
	http.Redirect(w, r, "/posts/", http.StatusSeeOther)
}

func (s *Server) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("name"))
	page, err := s.paginate(models.PostFilter{
		Status:   models.StatusPublished,
		Category: name,
	}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "category_posts", map[string]any{
		"CategoryName": titleCaser.String(name),
		"Page":         page,
	})
}

func (s *Server) handleAuthorPosts(w http.ResponseWriter, r *http.Request) {
	// Path segments carry hyphens where the username has spaces.
	username := strings.ReplaceAll(r.PathValue("name"), "-", " ")
	page, err := s.paginate(models.PostFilter{
		Status: models.StatusPublished,
		Author: username,
	}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "author_posts", map[string]any{
		"AuthorName": titleCaser.String(username),
		"Page":       page,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	page, err := s.paginate(models.PostFilter{
		Status: models.StatusPublished,
		Search: query,
	}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "search_results", map[string]any{
		"Query":        query,
		"Page":         page,
		"TotalResults": page.TotalItems,
	})
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request, user *models.User) {
	posts, err := models.ListPosts(s.DB, models.PostFilter{AuthorID: user.ID})
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "my_posts", map[string]any{"User": user, "Posts": posts})
}

func (s *Server) handleMyDrafts(w http.ResponseWriter, r *http.Request, user *models.User) {
	posts, err := models.ListPosts(s.DB, models.PostFilter{AuthorID: user.ID, Status: models.StatusDraft})
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, r, "draft_posts", map[string]any{"User": user, "Posts": posts})
}
