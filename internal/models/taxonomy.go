package models

import (
	"database/sql"
	"errors"
)

// GetOrCreateCategory returns the category named name, creating it if
// absent. The insert races safely: the unique constraint guarantees at
// most one row per name and the follow-up select picks up whichever
// writer won.
func GetOrCreateCategory(db *sql.DB, name string) (*Category, error) {
	if _, err := db.Exec(`INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return nil, err
	}
	return GetCategoryByName(db, name)
}

// GetCategoryByName matches case-insensitively; the column carries
// COLLATE NOCASE.
func GetCategoryByName(db *sql.DB, name string) (*Category, error) {
	row := db.QueryRow(`SELECT id, name FROM categories WHERE name = ?`, name)
	var c Category
	err := row.Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetCategoryByID(db *sql.DB, id int) (*Category, error) {
	row := db.QueryRow(`SELECT id, name FROM categories WHERE id = ?`, id)
	var c Category
	err := row.Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ListCategories(db *sql.DB) ([]Category, error) {
	rows, err := db.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetOrCreateTag mirrors GetOrCreateCategory for tags.
func GetOrCreateTag(db *sql.DB, name string) (*Tag, error) {
	if _, err := db.Exec(`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT id, name FROM tags WHERE name = ?`, name)
	var t Tag
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

func ListTags(db *sql.DB) ([]Tag, error) {
	rows, err := db.Query(`SELECT id, name FROM tags ORDER BY name`)
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
