package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Interactions *InteractionHandler
	Ratings      *RatingHandler
	Endorsements *EndorsementHandler
	Users        *UserHandler
	Auth         *AuthHandler
	Health       *HealthHandler
}

const uuidPattern = "[0-9a-fA-F-]{36}"

// NewRouter wires every route. authMW guards everything under /api/v1.
func NewRouter(h Handlers, authMW mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW)

	api.HandleFunc("/auth/logout", h.Auth.LogoutHandler).Methods(http.MethodPost)

	// 互动请求
	api.HandleFunc("/interactions", h.Interactions.CreateInteractionHandler).Methods(http.MethodPost)
	api.HandleFunc("/interactions/{interactionID}/respond", h.Interactions.RespondInteractionHandler).Methods(http.MethodPost)
	api.HandleFunc("/interactions/{interactionID}/ratings", h.Ratings.ListRatingsHandler).Methods(http.MethodGet)
	api.HandleFunc("/interactions/{interactionID}/ratings", h.Ratings.AddRatingHandler).Methods(http.MethodPost)

	// 用户
	api.HandleFunc("/users/search", h.Users.SearchUsersHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/interactions", h.Interactions.ListUserInteractionsHandler).Methods(http.MethodGet)

	// 背书
	api.HandleFunc("/endorsements", h.Endorsements.UpsertEndorsementHandler).Methods(http.MethodPost)
	api.HandleFunc("/endorsements/endorsed-by-me", h.Endorsements.EndorsedByMeHandler).Methods(http.MethodGet)
	api.HandleFunc("/endorsements/endorsing-me", h.Endorsements.EndorsingMeHandler).Methods(http.MethodGet)
	api.HandleFunc("/endorsements/{userID:"+uuidPattern+"}/endorsed-by", h.Endorsements.EndorsedByUserHandler).Methods(http.MethodGet)
	api.HandleFunc("/endorsements/{userID:"+uuidPattern+"}/endorsers", h.Endorsements.EndorsersOfUserHandler).Methods(http.MethodGet)

	return r
}
