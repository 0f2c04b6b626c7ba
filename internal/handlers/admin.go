// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/categories"
	"inkpress/internal/imaging"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/render"
	"inkpress/internal/slug"
	"inkpress/internal/storage"
	"inkpress/internal/store"
)

// maxUploadBytes caps media uploads at 32 MB.
const maxUploadBytes = 32 << 20

// allowedUploadTypes lists content types accepted by the media library.
var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

// Admin groups the handlers behind the authenticated admin panel.
type Admin struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	mediaStore    *store.MediaStore
	userStore     *store.UserStore
	pageCache     *cache.PageCache
	cacheLog      *store.CacheLogStore
	storage       *storage.Client
}

// NewAdmin creates the admin handler group. storage may be nil when no
// object storage is configured; the media library then renders read-only.
func NewAdmin(
	renderer *render.Renderer,
	postStore *store.PostStore,
	categoryStore *store.CategoryStore,
	mediaStore *store.MediaStore,
	userStore *store.UserStore,
	pageCache *cache.PageCache,
	cacheLog *store.CacheLogStore,
	storageClient *storage.Client,
) *Admin {
	return &Admin{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		mediaStore:    mediaStore,
		userStore:     userStore,
		pageCache:     pageCache,
		cacheLog:      cacheLog,
		storage:       storageClient,
	}
}

// Dashboard shows content counts and the recent cache invalidation log.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	postCount, err := a.postStore.Count()
	if err != nil {
		a.serverError(w, "count posts", err)
		return
	}
	publishedCount, err := a.postStore.CountPublished()
	if err != nil {
		a.serverError(w, "count published posts", err)
		return
	}
	cats, err := a.categoryStore.List()
	if err != nil {
		a.serverError(w, "list categories", err)
		return
	}
	mediaCount, err := a.mediaStore.Count()
	if err != nil {
		a.serverError(w, "count media", err)
		return
	}

	var log []store.CacheLogEntry
	if a.cacheLog != nil {
		log, err = a.cacheLog.RecentEntries(20)
		if err != nil {
			a.serverError(w, "read cache log", err)
			return
		}
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"PostCount":      postCount,
			"PublishedCount": publishedCount,
			"CategoryCount":  len(cats),
			"MediaCount":     mediaCount,
			"CacheLog":       log,
		},
	})
}

// PostsList shows all posts, drafts included.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postStore.List()
	if err != nil {
		a.serverError(w, "list posts", err)
		return
	}

	a.renderer.Page(w, r, "posts_list", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data:    map[string]any{"Posts": posts},
	})
}

// PostNew renders the empty post form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, &models.Post{Status: models.PostStatusDraft}, "/admin/posts/new", true)
}

// PostEdit renders the form pre-filled with an existing post.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}
	a.renderPostForm(w, r, post, "/admin/posts/"+post.ID.String(), false)
}

func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, post *models.Post, action string, isNew bool) {
	cats, err := a.categoryStore.List()
	if err != nil {
		a.serverError(w, "list categories", err)
		return
	}

	a.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   "Edit Post",
		Section: "posts",
		Data: map[string]any{
			"Post":       post,
			"Categories": categories.Flatten(categories.BuildTree(cats)),
			"FormAction": action,
			"IsNew":      isNew,
		},
	})
}

// PostCreate saves a new post from the form.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	post := &models.Post{}
	if !a.bindPostForm(w, r, post) {
		return
	}

	s, err := slug.Unique(post.Title, a.postStore.SlugExists)
	if err != nil {
		a.serverError(w, "generate slug", err)
		return
	}
	post.Slug = s

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil {
		post.AuthorID = sess.UserID
	}

	if post.Status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	created, err := a.postStore.Create(post)
	if err != nil {
		a.serverError(w, "create post", err)
		return
	}

	a.invalidatePages(r, "post", created.ID, "create")
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// PostUpdate saves changes to an existing post. The slug never changes
// after creation so published URLs stay stable.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	prevTitle := post.Title
	prevExcerpt := post.Excerpt
	prevStatus := post.Status
	prevCategory := post.CategoryID

	if !a.bindPostForm(w, r, post) {
		return
	}

	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if post.Status == models.PostStatusDraft {
		post.PublishedAt = nil
	}

	if err := a.postStore.Update(post); err != nil {
		a.serverError(w, "update post", err)
		return
	}

	// A body-only edit of a live post changes one public page. List
	// pages render titles and excerpts, so any other change still
	// flushes the whole cache.
	bodyOnly := prevStatus == models.PostStatusPublished &&
		post.Status == models.PostStatusPublished &&
		post.Title == prevTitle &&
		stringPtrEqual(post.Excerpt, prevExcerpt) &&
		uuidPtrEqual(post.CategoryID, prevCategory)
	if bodyOnly {
		a.invalidatePostPage(r, post)
	} else {
		a.invalidatePages(r, "post", post.ID, "update")
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// bindPostForm reads the shared form fields into post. It writes the
// error response itself and returns false when validation fails.
func (a *Admin) bindPostForm(w http.ResponseWriter, r *http.Request, post *models.Post) bool {
	title := strings.TrimSpace(r.FormValue("title"))
	body := r.FormValue("body")
	excerpt := strings.TrimSpace(r.FormValue("excerpt"))

	if msg := validatePost(title, body, excerpt); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return false
	}

	post.Title = title
	post.Body = body
	post.Excerpt = nil
	if excerpt != "" {
		post.Excerpt = &excerpt
	}

	post.Status = models.PostStatusDraft
	if r.FormValue("status") == string(models.PostStatusPublished) {
		post.Status = models.PostStatusPublished
	}

	post.CategoryID = nil
	if raw := r.FormValue("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid category", http.StatusBadRequest)
			return false
		}
		post.CategoryID = &id
	}

	return true
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	if err := a.postStore.Delete(post.ID); err != nil {
		a.serverError(w, "delete post", err)
		return
	}

	a.invalidatePages(r, "post", post.ID, "delete")
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// CategoriesPage renders the category tree editor. All mutations go
// through the JSON API; this page only materializes the current tree.
func (a *Admin) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categoryStore.List()
	if err != nil {
		a.serverError(w, "list categories", err)
		return
	}

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"Tree": categories.BuildTree(cats)},
	})
}

// MediaLibrary shows uploaded files with public URLs resolved per item.
func (a *Admin) MediaLibrary(w http.ResponseWriter, r *http.Request) {
	media, err := a.mediaStore.List(100, 0)
	if err != nil {
		a.serverError(w, "list media", err)
		return
	}

	urls := make(map[string]string, len(media))
	if a.storage != nil {
		for _, m := range media {
			key := m.S3Key
			if m.ThumbS3Key != nil {
				key = *m.ThumbS3Key
			}
			urls[m.ID.String()] = a.storage.FileURL(key)
		}
	}

	a.renderer.Page(w, r, "media_library", &render.PageData{
		Title:   "Media",
		Section: "media",
		Data: map[string]any{
			"Media":          media,
			"URLs":           urls,
			"StorageEnabled": a.storage != nil,
		},
	})
}

// MediaUpload stores an uploaded file in object storage and records its
// metadata. Raster images larger than the thumbnail width also get a
// JPEG thumbnail.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		http.Error(w, "object storage is not configured", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "upload too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		http.Error(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	id := uuid.New()
	now := time.Now()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), id, ext)

	if err := a.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		a.serverError(w, "upload to storage", err)
		return
	}

	media := &models.Media{
		ID:           id,
		Filename:     path.Base(key),
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		Bucket:       a.storage.Bucket(),
		S3Key:        key,
	}

	if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
		media.AltText = &alt
	}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		media.UploaderID = sess.UserID
	}

	// SVG and GIF keep their original bytes; everything else raster gets
	// a scaled-down thumbnail next to the original.
	if contentType == "image/jpeg" || contentType == "image/png" || contentType == "image/webp" {
		if _, err := file.Seek(0, 0); err == nil {
			thumb, terr := imaging.Thumbnail(file, imaging.ThumbMaxWidth)
			if terr != nil {
				slog.Warn("thumbnail generation failed", "file", header.Filename, "error", terr)
			} else if thumb != nil {
				thumbKey := fmt.Sprintf("media/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), id)
				if uerr := a.storage.Upload(r.Context(), thumbKey, "image/jpeg",
					bytes.NewReader(thumb), int64(len(thumb))); uerr != nil {
					slog.Warn("thumbnail upload failed", "file", header.Filename, "error", uerr)
				} else {
					media.ThumbS3Key = &thumbKey
				}
			}
		}
	}

	if _, err := a.mediaStore.Create(media); err != nil {
		a.serverError(w, "record media", err)
		return
	}

	http.Redirect(w, r, "/admin/media", http.StatusSeeOther)
}

// MediaDelete removes a file from storage and the database.
func (a *Admin) MediaDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	media, err := a.mediaStore.Delete(id)
	if err != nil {
		a.serverError(w, "delete media", err)
		return
	}
	if media == nil {
		http.NotFound(w, r)
		return
	}

	if a.storage != nil {
		if err := a.storage.Delete(r.Context(), media.S3Key); err != nil {
			slog.Warn("storage delete failed", "key", media.S3Key, "error", err)
		}
		if media.ThumbS3Key != nil {
			if err := a.storage.Delete(r.Context(), *media.ThumbS3Key); err != nil {
				slog.Warn("storage delete failed", "key", *media.ThumbS3Key, "error", err)
			}
		}
	}

	http.Redirect(w, r, "/admin/media", http.StatusSeeOther)
}

// UsersList shows registered accounts. Admin only.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List()
	if err != nil {
		a.serverError(w, "list users", err)
		return
	}

	a.renderer.Page(w, r, "users_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data:    map[string]any{"Users": users},
	})
}

// UserReset2FA clears a user's TOTP enrollment so they can re-enroll.
func (a *Admin) UserReset2FA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.userStore.ResetTOTP(id); err != nil {
		a.serverError(w, "reset totp", err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// findPost resolves the {id} route parameter to a post, writing 404 on
// failure.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	post, err := a.postStore.FindByID(id)
	if err != nil {
		a.serverError(w, "find post", err)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// invalidatePages drops all cached public pages and records the action.
// Posts appear in paginated lists, so a single change can move content
// across many cached pages.
func (a *Admin) invalidatePages(r *http.Request, entityType string, id uuid.UUID, action string) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	if a.cacheLog != nil {
		a.cacheLog.Log(entityType, id, action)
	}
}

// invalidatePostPage drops only the post's own cached page.
func (a *Admin) invalidatePostPage(r *http.Request, post *models.Post) {
	if a.pageCache != nil {
		a.pageCache.Invalidate(r.Context(), cache.PostKey(post.Slug))
	}
	if a.cacheLog != nil {
		a.cacheLog.Log("post", post.ID, "update-body")
	}
}

func (a *Admin) serverError(w http.ResponseWriter, op string, err error) {
	slog.Error("admin handler failed", "op", op, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
