package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/logger"
	"github.com/dmcconeghy/CL-backend-assessment/model"
	"github.com/dmcconeghy/CL-backend-assessment/repository"
	"github.com/dmcconeghy/CL-backend-assessment/storage"
)

// UserHandler serves the user CRUD and search endpoints.
type UserHandler struct {
	users  repository.UserRepository
	images *storage.ImageStore // nil when MinIO is not configured
}

// NewUserHandler creates a user handler.
func NewUserHandler(users repository.UserRepository, images *storage.ImageStore) *UserHandler {
	return &UserHandler{users: users, images: images}
}

// CreateUserHandler creates a new user. All four fields are required; a
// duplicate email is a conflict. Accepts a JSON body, or query parameters
// for clients that still send them that way.
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			respondError(w, err)
			return
		}
		req = model.CreateUserRequest{
			Name:    r.URL.Query().Get("name"),
			Email:   r.URL.Query().Get("email"),
			Address: r.URL.Query().Get("address"),
			Image:   r.URL.Query().Get("image"),
		}
	}

	if err := validateCreateUser(&req); err != nil {
		respondError(w, err)
		return
	}

	user := &model.User{Name: req.Name, Email: req.Email, Address: req.Address, Image: req.Image}
	id, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func validateCreateUser(req *model.CreateUserRequest) error {
	if req.Name == "" {
		return apperr.Wrap(apperr.ErrMissingField, "name is required")
	}
	if req.Email == "" {
		return apperr.Wrap(apperr.ErrMissingField, "email is required")
	}
	if req.Address == "" {
		return apperr.Wrap(apperr.ErrMissingField, "address is required")
	}
	if req.Image == "" {
		return apperr.Wrap(apperr.ErrMissingField, "image is required")
	}
	return nil
}

// GetUserHandler returns a user's basic information.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateUserHandler applies a partial update. Unset fields keep their
// current values. Accepts a JSON body or query parameters.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			respondError(w, err)
			return
		}
		req = model.UpdateUserRequest{
			Name:    queryString(r, "name"),
			Email:   queryString(r, "email"),
			Address: queryString(r, "address"),
			Image:   queryString(r, "image"),
		}
	}

	if err := h.users.UpdateUser(r.Context(), id, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteUserHandler deletes a user. The user's sessions and ticks are
// deleted with them in the same transaction.
func (h *UserHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// SearchUserHandler finds the first user whose name, email, or address
// contains the query substring. ?by= selects the field, ?q= the substring.
func (h *UserHandler) SearchUserHandler(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	q := r.URL.Query().Get("q")
	if by == "" {
		by = "name"
	}
	if q == "" {
		respondError(w, apperr.Wrap(apperr.ErrMissingField, "q is required"))
		return
	}

	user, err := h.users.SearchUser(r.Context(), by, q)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUserImageHandler streams the user's image asset from object storage.
func (h *UserHandler) GetUserImageHandler(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		respondError(w, apperr.Wrap(apperr.ErrNotFound, "image storage is not configured"))
		return
	}

	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	object, contentType, err := h.images.GetImage(r.Context(), user.Image)
	if err != nil {
		respondError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, object); err != nil {
		logger.Error("failed to stream user image",
			logger.Int64("userId", id), logger.ErrorField(err))
	}
}

// UploadUserImageHandler stores a new image asset for the user and points
// the user's image field at it. Expects a multipart form with an
// "imageFile" field.
func (h *UserHandler) UploadUserImageHandler(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		respondError(w, apperr.Wrap(apperr.ErrNotFound, "image storage is not configured"))
		return
	}

	id, err := pathID(r, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.users.GetUserByID(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, apperr.Wrap(apperr.ErrInvalidValue, "failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("imageFile")
	if err != nil {
		respondError(w, apperr.Wrap(apperr.ErrMissingField, "imageFile is required"))
		return
	}
	defer file.Close()

	if err := h.images.PutImage(r.Context(), header.Filename, file, header.Size,
		header.Header.Get("Content-Type")); err != nil {
		respondError(w, err)
		return
	}

	image := header.Filename
	if err := h.users.UpdateUser(r.Context(), id, &model.UpdateUserRequest{Image: &image}); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"image": image})
}
