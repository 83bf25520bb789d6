package apiserver

import (
	"encoding/json"
	"net/http"

	"matchgraph/internal/services"
)

// RatingHandler serves ratings nested under an interaction.
type RatingHandler struct {
	ratingService      services.RatingService
	interactionService services.InteractionService
	userService        services.UserService
}

func NewRatingHandler(rs services.RatingService, is services.InteractionService, us services.UserService) *RatingHandler {
	return &RatingHandler{ratingService: rs, interactionService: is, userService: us}
}

// AddRatingRequest is the body of POST /api/v1/interactions/{interactionID}/ratings.
type AddRatingRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// AddRatingHandler handles POST /api/v1/interactions/{interactionID}/ratings
func (h *RatingHandler) AddRatingHandler(w http.ResponseWriter, r *http.Request) {
	raterID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	interactionID, ok := pathUUID(w, r, "interactionID")
	if !ok {
		return
	}

	var req AddRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Rating == nil {
		writeJSONError(w, "rating is required", http.StatusBadRequest)
		return
	}

	rating, err := h.ratingService.AddRating(r.Context(), interactionID, raterID, *req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, err, "failed to add rating")
		return
	}
	writeJSONResponse(w, http.StatusCreated, rating)
}

// ListRatingsHandler handles GET /api/v1/interactions/{interactionID}/ratings
// Participants and superusers only.
func (h *RatingHandler) ListRatingsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	interactionID, ok := pathUUID(w, r, "interactionID")
	if !ok {
		return
	}

	interaction, err := h.interactionService.GetInteraction(r.Context(), interactionID)
	if err != nil {
		writeServiceError(w, err, "failed to load interaction")
		return
	}

	if !interaction.IsParticipant(callerID) {
		allowed, err := isSuperuser(r, h.userService, callerID)
		if err != nil {
			writeServiceError(w, err, "failed to check permissions")
			return
		}
		if !allowed {
			writeJSONError(w, "not allowed to view ratings of this interaction", http.StatusForbidden)
			return
		}
	}

	ratings, err := h.ratingService.ListRatingsWithRater(r.Context(), interactionID)
	if err != nil {
		writeServiceError(w, err, "failed to list ratings")
		return
	}
	writeJSONResponse(w, http.StatusOK, ratings)
}
