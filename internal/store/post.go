// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// PostStore manages blog posts in the database.
type PostStore struct {
	db *sql.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, body, excerpt, status, category_id,
	featured_image_id, author_id, published_at, created_at, updated_at`

// scanPost scans a post row from the result set.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Status,
		&p.CategoryID, &p.FeaturedImageID, &p.AuthorID,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all posts for the admin panel, newest first, with author
// and category display names joined in.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.body, p.excerpt, p.status, p.category_id,
		       p.featured_image_id, p.author_id, p.published_at, p.created_at, p.updated_at,
		       u.display_name, COALESCE(c.name, '')
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	return collectPostsWithNames(rows)
}

// ListPublished returns one page of published posts, newest first.
func (s *PostStore) ListPublished(limit, offset int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.body, p.excerpt, p.status, p.category_id,
		       p.featured_image_id, p.author_id, p.published_at, p.created_at, p.updated_at,
		       u.display_name, COALESCE(c.name, '')
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.status = 'published'
		ORDER BY p.published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()
	return collectPostsWithNames(rows)
}

// ListPublishedByCategory returns one page of published posts in the
// given categories, newest first. ids normally covers a whole subtree.
func (s *PostStore) ListPublishedByCategory(ids []uuid.UUID, limit, offset int) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// Pass the ids as a text array and cast; the stdlib driver has no
	// native uuid-slice mapping.
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.body, p.excerpt, p.status, p.category_id,
		       p.featured_image_id, p.author_id, p.published_at, p.created_at, p.updated_at,
		       u.display_name, COALESCE(c.name, '')
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.status = 'published' AND p.category_id = ANY($1::uuid[])
		ORDER BY p.published_at DESC
		LIMIT $2 OFFSET $3
	`, idStrs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	defer rows.Close()
	return collectPostsWithNames(rows)
}

// CountPublishedByCategory returns the number of published posts across
// the given category IDs.
func (s *PostStore) CountPublishedByCategory(ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts
		WHERE status = 'published' AND category_id = ANY($1::uuid[])
	`, idStrs).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return n, nil
}

// Search runs a full-text query over published posts' titles and bodies,
// most relevant first. websearch_to_tsquery accepts raw user input
// (quoted phrases, OR, -exclusions) without manual escaping.
func (s *PostStore) Search(query string, limit, offset int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.slug, p.body, p.excerpt, p.status, p.category_id,
		       p.featured_image_id, p.author_id, p.published_at, p.created_at, p.updated_at,
		       u.display_name, COALESCE(c.name, '')
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.status = 'published'
		  AND to_tsvector('english', p.title || ' ' || p.body) @@ websearch_to_tsquery('english', $1)
		ORDER BY ts_rank(to_tsvector('english', p.title || ' ' || p.body),
		                 websearch_to_tsquery('english', $1)) DESC,
		         p.published_at DESC
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()
	return collectPostsWithNames(rows)
}

// collectPostsWithNames scans rows produced by the joined list queries.
func collectPostsWithNames(rows *sql.Rows) ([]models.Post, error) {
	var items []models.Post
	for rows.Next() {
		var p models.Post
		err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Status,
			&p.CategoryID, &p.FeaturedImageID, &p.AuthorID,
			&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
			&p.AuthorName, &p.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by slug. Returns nil if
// not found or not published.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts
		WHERE slug = $1 AND status = 'published'`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any post already uses the slug.
func (s *PostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it with generated fields.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		INSERT INTO posts (title, slug, body, excerpt, status, category_id,
			featured_image_id, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			CASE WHEN $5 = 'published' THEN NOW() ELSE NULL END)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Body, p.Excerpt, p.Status, p.CategoryID,
		p.FeaturedImageID, p.AuthorID,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post. PublishedAt is stamped on the first
// transition to published and kept afterwards.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, body = $3, excerpt = $4, status = $5,
			category_id = $6, featured_image_id = $7,
			published_at = CASE
				WHEN $5 = 'published' THEN COALESCE(published_at, NOW())
				ELSE published_at
			END,
			updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Slug, p.Body, p.Excerpt, p.Status, p.CategoryID,
		p.FeaturedImageID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// CountPublished returns the total number of published posts.
func (s *PostStore) CountPublished() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE status = 'published'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return count, nil
}

// Count returns the total number of posts.
func (s *PostStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
