package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/post"
)

type PostRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Content     string `json:"content" validate:"required"`
	IsPublished bool   `json:"is_published"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type PostHandler struct {
	service  post.Service
	validate *validator.Validate
}

func NewPostHandler(service post.Service) *PostHandler {
	return &PostHandler{service: service, validate: validator.New()}
}

// RegisterPublicRoutes mounts the anonymous read-only endpoints.
func (h *PostHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/posts", h.handleListPosts)
	router.Get("/posts/{id}", h.handleGetPost)
	router.Get("/posts/{id}/comments", h.handleListComments)
}

func (h *PostHandler) RegisterRoutes(router chi.Router) {
	router.Post("/posts", h.handleCreatePost)
	router.Put("/posts/{id}", h.handleUpdatePost)
	router.Delete("/posts/{id}", h.handleDeletePost)
	router.Post("/posts/{id}/comments", h.handleAddComment)
}

func (h *PostHandler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list posts")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	foundPost, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, post.ErrNotFound) {
			clientMessage = "Post not found"
		} else {
			log.Error().Err(err).Msg("Failed to get post via service")
			clientMessage = "Failed to get post"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, foundPost)
}

func (h *PostHandler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload PostRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	createdPost, err := h.service.CreatePost(r.Context(), claims.UserID, post.CreateInput{
		Title:       requestPayload.Title,
		Content:     requestPayload.Content,
		IsPublished: requestPayload.IsPublished,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create post via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create post")
		return
	}

	respondWithJSON(w, http.StatusCreated, createdPost)
}

func (h *PostHandler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload PostRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	updatedPost, err := h.service.UpdatePost(r.Context(), claims.UserID, claims.IsStaff, postID, post.CreateInput{
		Title:       requestPayload.Title,
		Content:     requestPayload.Content,
		IsPublished: requestPayload.IsPublished,
	})
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, post.ErrNotFound):
			clientMessage = "Post not found"
		case errors.Is(err, post.ErrForbidden):
			clientMessage = "Not allowed to modify this post"
		default:
			log.Error().Err(err).Msg("Failed to update post via service")
			clientMessage = "Failed to update post"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, updatedPost)
}

func (h *PostHandler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeletePost(r.Context(), claims.UserID, claims.IsStaff, postID); err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, post.ErrNotFound):
			clientMessage = "Post not found"
		case errors.Is(err, post.ErrForbidden):
			clientMessage = "Not allowed to delete this post"
		default:
			log.Error().Err(err).Msg("Failed to delete post via service")
			clientMessage = "Failed to delete post"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload CommentRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), claims.UserID, postID, requestPayload.Content)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, post.ErrNotFound) {
			clientMessage = "Post not found"
		} else {
			log.Error().Err(err).Msg("Failed to add comment via service")
			clientMessage = "Failed to add comment"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *PostHandler) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	comments, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, post.ErrNotFound) {
			clientMessage = "Post not found"
		} else {
			log.Error().Err(err).Msg("Failed to list comments via service")
			clientMessage = "Failed to list comments"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, comments)
}
