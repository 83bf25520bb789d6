package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"matchgraph/internal/models"
	"matchgraph/internal/services"
)

// InteractionHandler serves the interaction request endpoints.
type InteractionHandler struct {
	interactionService services.InteractionService
	userService        services.UserService
}

func NewInteractionHandler(is services.InteractionService, us services.UserService) *InteractionHandler {
	return &InteractionHandler{interactionService: is, userService: us}
}

// CreateInteractionRequest is the body of POST /api/v1/interactions.
type CreateInteractionRequest struct {
	TargetID uuid.UUID `json:"target_id"`
	Message  *string   `json:"message,omitempty"`
}

// CreateInteractionHandler handles POST /api/v1/interactions
func (h *InteractionHandler) CreateInteractionHandler(w http.ResponseWriter, r *http.Request) {
	initiatorID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req CreateInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.TargetID == uuid.Nil {
		writeJSONError(w, "target_id is required", http.StatusBadRequest)
		return
	}

	exists, err := h.userService.UserExists(r.Context(), req.TargetID)
	if err != nil {
		writeServiceError(w, err, "failed to look up target user")
		return
	}
	if !exists {
		writeJSONError(w, "target user not found", http.StatusNotFound)
		return
	}

	interaction, err := h.interactionService.CreateInteraction(r.Context(), initiatorID, req.TargetID, req.Message)
	if err != nil {
		writeServiceError(w, err, "failed to create interaction")
		return
	}
	writeJSONResponse(w, http.StatusCreated, interaction)
}

// RespondInteractionHandler handles POST /api/v1/interactions/{interactionID}/respond?accept=true|false
func (h *InteractionHandler) RespondInteractionHandler(w http.ResponseWriter, r *http.Request) {
	responderID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	interactionID, ok := pathUUID(w, r, "interactionID")
	if !ok {
		return
	}

	accept, err := strconv.ParseBool(r.URL.Query().Get("accept"))
	if err != nil {
		writeJSONError(w, "accept must be true or false", http.StatusBadRequest)
		return
	}

	interaction, err := h.interactionService.RespondInteraction(r.Context(), interactionID, responderID, accept)
	if err != nil {
		writeServiceError(w, err, "failed to respond to interaction")
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Interaction %s", interaction.Status)})
}

// ListUserInteractionsHandler handles GET /api/v1/users/{userID}/interactions?role=&skip=&limit=
// Only the user themselves or a superuser may list.
func (h *InteractionHandler) ListUserInteractionsHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	if callerID != userID {
		allowed, err := isSuperuser(r, h.userService, callerID)
		if err != nil {
			writeServiceError(w, err, "failed to check permissions")
			return
		}
		if !allowed {
			writeJSONError(w, "not allowed to view these interactions", http.StatusForbidden)
			return
		}
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeJSONError(w, "skip must be an integer", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeJSONError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}
	role := models.InteractionRole(r.URL.Query().Get("role"))

	interactions, err := h.interactionService.ListUserInteractions(r.Context(), userID, role, skip, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list interactions")
		return
	}
	writeJSONResponse(w, http.StatusOK, interactions)
}
