// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/categories"
	"inkpress/internal/markdown"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/store"
)

// postsPerPage controls pagination on public list pages.
const postsPerPage = 10

// Public groups the handlers for the reader-facing blog. Rendered pages
// are stored in the page cache keyed by URL shape; search results are
// never cached.
type Public struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	pageCache     *cache.PageCache
}

// NewPublic creates the public handler group. pageCache may be nil, in
// which case every request renders fresh.
func NewPublic(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		pageCache:     pageCache,
	}
}

// Home renders the paginated list of published posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	if p.serveCached(w, r, cache.HomepageKey(page)) {
		return
	}

	total, err := p.postStore.CountPublished()
	if err != nil {
		p.serverError(w, "count published posts", err)
		return
	}

	posts, err := p.postStore.ListPublished(postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		p.serverError(w, "list published posts", err)
		return
	}

	data := p.baseData(w)
	if data == nil {
		return
	}
	data["Posts"] = posts
	paginate(data, "/", page, total)

	p.renderCached(w, r, "home", cache.HomepageKey(page), &render.PageData{
		Title: "Home",
		Data:  data,
	})
}

// Post renders a single published post by slug. Markdown is converted
// to HTML at render time and the finished page is cached.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if p.serveCached(w, r, cache.PostKey(s)) {
		return
	}

	post, err := p.postStore.FindPublishedBySlug(s)
	if err != nil {
		p.serverError(w, "find post", err)
		return
	}
	if post == nil {
		http.NotFound(w, r)
		return
	}

	bodyHTML, err := markdown.ToHTML(post.Body)
	if err != nil {
		p.serverError(w, "render markdown", err)
		return
	}

	data := p.baseData(w)
	if data == nil {
		return
	}
	data["Post"] = post
	data["BodyHTML"] = bodyHTML

	p.renderCached(w, r, "post", cache.PostKey(s), &render.PageData{
		Title: post.Title,
		Data:  data,
	})
}

// Category renders a category page: its direct subcategories plus the
// published posts of the whole subtree, paginated.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page := pageParam(r)
	if p.serveCached(w, r, cache.CategoryKey(id, page)) {
		return
	}

	flat, err := p.categoryStore.List()
	if err != nil {
		p.serverError(w, "list categories", err)
		return
	}

	tree := categories.BuildTree(flat)
	node := findNode(tree, id)
	if node == nil {
		http.NotFound(w, r)
		return
	}

	ids := subtreeIDs(*node)

	total, err := p.postStore.CountPublishedByCategory(ids)
	if err != nil {
		p.serverError(w, "count category posts", err)
		return
	}

	posts, err := p.postStore.ListPublishedByCategory(ids, postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		p.serverError(w, "list category posts", err)
		return
	}

	data := map[string]any{
		"Nav":      tree,
		"Query":    "",
		"Category": node,
		"Posts":    posts,
	}
	paginate(data, "/category/"+id.String(), page, total)

	p.renderCached(w, r, "category", cache.CategoryKey(id, page), &render.PageData{
		Title: node.Name,
		Data:  data,
	})
}

// Search runs a text search over published posts. Results are rendered
// fresh on every request.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var posts []models.Post
	if query != "" {
		var err error
		posts, err = p.postStore.Search(query, 50, 0)
		if err != nil {
			p.serverError(w, "search posts", err)
			return
		}
	}

	data := p.baseData(w)
	if data == nil {
		return
	}
	data["Query"] = query
	data["Posts"] = posts

	p.renderer.Page(w, r, "search", &render.PageData{
		Title: "Search",
		Data:  data,
	})
}

// baseData builds the Data map every public page needs: the root
// categories for the nav and an empty search query. It writes the error
// response and returns nil on failure.
func (p *Public) baseData(w http.ResponseWriter) map[string]any {
	cats, err := p.categoryStore.List()
	if err != nil {
		p.serverError(w, "list categories", err)
		return nil
	}

	return map[string]any{
		"Nav":   categories.BuildTree(cats),
		"Query": "",
	}
}

// serveCached writes a cached page when present.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if p.pageCache == nil {
		return false
	}
	html, ok := p.pageCache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
	return true
}

// renderCached renders a page, stores it in the cache, and writes it.
func (p *Public) renderCached(w http.ResponseWriter, r *http.Request, name, key string, data *render.PageData) {
	out, err := p.renderer.Bytes(r, name, data)
	if err != nil {
		p.serverError(w, "render "+name, err)
		return
	}

	if p.pageCache != nil {
		p.pageCache.Set(r.Context(), key, out)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

func (p *Public) serverError(w http.ResponseWriter, op string, err error) {
	slog.Error("public handler failed", "op", op, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// pageParam reads ?page=N, defaulting to 1.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// paginate sets PrevPage/NextPage/BasePath; zero values hide the links.
func paginate(data map[string]any, basePath string, page, total int) {
	data["BasePath"] = basePath
	data["PrevPage"] = 0
	data["NextPage"] = 0
	if page > 1 {
		data["PrevPage"] = page - 1
	}
	if page*postsPerPage < total {
		data["NextPage"] = page + 1
	}
}

// findNode locates a category by ID anywhere in the materialized tree.
func findNode(tree []models.Category, id uuid.UUID) *models.Category {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i]
		}
		if found := findNode(tree[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// subtreeIDs collects the IDs of a category and all its descendants.
func subtreeIDs(c models.Category) []uuid.UUID {
	ids := []uuid.UUID{c.ID}
	for _, child := range c.Children {
		ids = append(ids, subtreeIDs(child)...)
	}
	return ids
}
