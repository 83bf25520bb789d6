package apiserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"matchgraph/internal/services"
)

// UserHandler 封装了用户相关的 HTTP 处理器方法。
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserSearchResult controls which identity fields leave the service.
type UserSearchResult struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
}

// SearchUsersHandler handles GET /api/v1/users/search?q=&limit=
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, "q must not be empty", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}

	users, err := h.userService.SearchUsers(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err, "failed to search users")
		return
	}

	results := make([]UserSearchResult, len(users))
	for i, u := range users {
		results[i] = UserSearchResult{ID: u.ID, Email: u.Email, FullName: u.FullName}
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// isSuperuser reports whether the caller holds elevated privileges. A caller missing
// from the identity store has none.
func isSuperuser(r *http.Request, users services.UserService, userID uuid.UUID) (bool, error) {
	user, err := users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSuperuser, nil
}
