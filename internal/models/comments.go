package models

import (
	"database/sql"
	"errors"
)

func CreateComment(db *sql.DB, postID, authorID int, body string) error {
	_, err := db.Exec(`INSERT INTO comments (post_id, author_id, body) VALUES (?, ?, ?)`, postID, authorID, body)
	return err
}

// ListApprovedComments returns a post's approved comments oldest-first,
// annotated with the author username.
func ListApprovedComments(db *sql.DB, postID int) ([]Comment, error) {
	rows, err := db.Query(`SELECT c.id, c.post_id, c.author_id, c.body, c.is_approved, c.created_at, u.username
        FROM comments c JOIN users u ON u.id = c.author_id
        WHERE c.post_id = ? AND c.is_approved = 1
        ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cs []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.IsApproved, &c.CreatedAt, &c.Author); err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

// DeleteCommentByAuthor removes the comment only when authorID owns it,
// returning the parent post ID for the redirect. The ownership check is
// folded into the lookup, so a non-owner gets ErrNotFound and learns
// nothing about the row.
func DeleteCommentByAuthor(db *sql.DB, id, authorID int) (int, error) {
	var postID int
	err := db.QueryRow(`SELECT post_id FROM comments WHERE id = ? AND author_id = ?`, id, authorID).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	_, err = db.Exec(`DELETE FROM comments WHERE id = ? AND author_id = ?`, id, authorID)
	return postID, err
}
