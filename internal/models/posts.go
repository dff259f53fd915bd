package models

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	slug := strings.ToLower(s)
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "post"
	}
	return slug
}

// uniqueSlug derives a slug from title that no existing post uses,
// suffixing -2, -3, ... on collision.
func uniqueSlug(tx *sql.Tx, title string) (string, error) {
	base := Slugify(title)
	slug := base
	for n := 2; ; n++ {
		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM posts WHERE slug = ?`, slug).Scan(&count); err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// CreatePost inserts p and its tag associations. The slug is generated
// here and written back to p along with the new ID.
func CreatePost(db *sql.DB, p *Post, tagIDs []int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	slug, err := uniqueSlug(tx, p.Title)
	if err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec(`INSERT INTO posts (author_id, category_id, title, slug, excerpt, content, status, is_featured, allow_comments, published_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CASE WHEN ? = 'published' THEN CURRENT_TIMESTAMP END)`,
		p.AuthorID, p.CategoryID, p.Title, slug, p.Excerpt, p.Content, p.Status, p.IsFeatured, p.AllowComments, p.Status)
	if err != nil {
		tx.Rollback()
		return err
	}
	postID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, tid := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tid); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.ID = int(postID)
	p.Slug = slug
	return nil
}

// UpdatePost rewrites the editable fields of p and replaces its tag set.
// The slug, author, and creation time never change; published_at is set
// the first time the post lands on published status.
func UpdatePost(db *sql.DB, p *Post, tagIDs []int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(`UPDATE posts SET title = ?, excerpt = ?, content = ?, category_id = ?, status = ?, is_featured = ?, allow_comments = ?,
        published_at = CASE WHEN ? = 'published' AND published_at IS NULL THEN CURRENT_TIMESTAMP ELSE published_at END
        WHERE id = ?`,
		p.Title, p.Excerpt, p.Content, p.CategoryID, p.Status, p.IsFeatured, p.AllowComments, p.Status, p.ID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, p.ID); err != nil {
		tx.Rollback()
		return err
	}
	for _, tid := range tagIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, p.ID, tid); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeletePost hard-deletes the post; comments and tag links go with it
// via the schema's cascades.
func DeletePost(db *sql.DB, id int) error {
	_, err := db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

const postColumns = `p.id, p.author_id, p.category_id, p.title, p.slug, p.excerpt, p.content,
    p.status, p.is_featured, p.allow_comments, p.views_count, p.created_at, p.published_at,
    u.username, c.name`

const postJoins = ` FROM posts p
    JOIN users u ON u.id = p.author_id
    JOIN categories c ON c.id = p.category_id`

func GetPostBySlug(db *sql.DB, slug string) (*Post, error) {
	row := db.QueryRow(`SELECT `+postColumns+postJoins+` WHERE p.slug = ?`, slug)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	p.Tags, err = postTags(db, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func GetPostByID(db *sql.DB, id int) (*Post, error) {
	row := db.QueryRow(`SELECT `+postColumns+postJoins+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	p.Tags, err = postTags(db, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// IncrementViews bumps the view counter by one in a single UPDATE so
// concurrent reads never lose a count.
func IncrementViews(db *sql.DB, id int) error {
	_, err := db.Exec(`UPDATE posts SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

// PostFilter narrows ListPosts and CountPosts. Zero values are no-ops.
type PostFilter struct {
	Status       string // exact status
	Category     string // exact category name, case-insensitive
	Author       string // exact username, case-insensitive
	AuthorID     int
	Search       string // substring over title, excerpt, category, author
	FeaturedOnly bool
	Limit        int
	Offset       int
}

func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		conds = append(conds, "c.name = ?")
		args = append(args, f.Category)
	}
	if f.Author != "" {
		conds = append(conds, "u.username = ?")
		args = append(args, f.Author)
	}
	if f.AuthorID != 0 {
		conds = append(conds, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.FeaturedOnly {
		conds = append(conds, "p.is_featured = 1")
	}
	if f.Search != "" {
		conds = append(conds, "(p.title LIKE ? OR p.excerpt LIKE ? OR c.name LIKE ? OR u.username LIKE ?)")
		q := "%" + f.Search + "%"
		args = append(args, q, q, q, q)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPosts returns matching posts newest-first, annotated with author,
// category, and tags.
func ListPosts(db *sql.DB, f PostFilter) ([]Post, error) {
	where, args := f.where()
	q := `SELECT ` + postColumns + postJoins + where + ` ORDER BY p.created_at DESC, p.id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Tags, err = postTags(db, posts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func CountPosts(db *sql.DB, f PostFilter) (int, error) {
	where, args := f.where()
	var n int
	err := db.QueryRow(`SELECT COUNT(*)`+postJoins+where, args...).Scan(&n)
	return n, err
}

// ListRelated returns up to limit published posts sharing the category,
// excluding the post itself.
func ListRelated(db *sql.DB, categoryID, excludeID, limit int) ([]Post, error) {
	rows, err := db.Query(`SELECT `+postColumns+postJoins+`
        WHERE p.status = ? AND p.category_id = ? AND p.id != ?
        ORDER BY p.created_at DESC, p.id DESC LIMIT ?`,
		StatusPublished, categoryID, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FeaturedTopics lists up to limit distinct category names that have at
// least one published post.
func FeaturedTopics(db *sql.DB, limit int) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT c.name FROM posts p
        JOIN categories c ON c.id = p.category_id
        WHERE p.status = ? LIMIT ?`, StatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func CountDistinctAuthors(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(DISTINCT author_id) FROM posts WHERE status = ?`, StatusPublished).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var published sql.NullTime
	err := row.Scan(&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&p.Status, &p.IsFeatured, &p.AllowComments, &p.ViewsCount, &p.CreatedAt, &published,
		&p.Author, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if published.Valid {
		p.PublishedAt = &published.Time
	}
	return &p, nil
}

func postTags(db *sql.DB, postID int) ([]Tag, error) {
	rows, err := db.Query(`SELECT t.id, t.name FROM tags t
        JOIN post_tags pt ON pt.tag_id = t.id
        WHERE pt.post_id = ? ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
