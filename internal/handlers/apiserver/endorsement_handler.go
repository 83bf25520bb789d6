package apiserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"matchgraph/internal/models"
	"matchgraph/internal/services"
)

// EndorsementHandler serves endorsement creation and the four listing views.
type EndorsementHandler struct {
	endorsementService services.EndorsementService
	userService        services.UserService
}

func NewEndorsementHandler(es services.EndorsementService, us services.UserService) *EndorsementHandler {
	return &EndorsementHandler{endorsementService: es, userService: us}
}

// UpsertEndorsementRequest is the body of POST /api/v1/endorsements.
type UpsertEndorsementRequest struct {
	EndorsedID uuid.UUID `json:"endorsed_id"`
	Confidence *float64  `json:"confidence"`
}

// UpsertEndorsementHandler handles POST /api/v1/endorsements
func (h *EndorsementHandler) UpsertEndorsementHandler(w http.ResponseWriter, r *http.Request) {
	endorserID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req UpsertEndorsementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.EndorsedID == uuid.Nil || req.Confidence == nil {
		writeJSONError(w, "endorsed_id and confidence are required", http.StatusBadRequest)
		return
	}
	if req.EndorsedID == endorserID {
		writeServiceError(w, services.ErrEndorseSelf, "failed to endorse user")
		return
	}

	exists, err := h.userService.UserExists(r.Context(), req.EndorsedID)
	if err != nil {
		writeServiceError(w, err, "failed to look up endorsed user")
		return
	}
	if !exists {
		writeJSONError(w, "endorsed user not found", http.StatusNotFound)
		return
	}

	endorsement, err := h.endorsementService.UpsertEndorsement(r.Context(), endorserID, req.EndorsedID, *req.Confidence)
	if err != nil {
		writeServiceError(w, err, "failed to endorse user")
		return
	}
	writeJSONResponse(w, http.StatusOK, endorsement)
}

// EndorsedByMeHandler handles GET /api/v1/endorsements/endorsed-by-me
func (h *EndorsementHandler) EndorsedByMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.writeEndorsements(w, r, userID, h.endorsementService.ListByEndorserWithUsers)
}

// EndorsingMeHandler handles GET /api/v1/endorsements/endorsing-me
func (h *EndorsementHandler) EndorsingMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	h.writeEndorsements(w, r, userID, h.endorsementService.ListByEndorsedWithUsers)
}

// EndorsedByUserHandler handles GET /api/v1/endorsements/{userID}/endorsed-by:
// the edges userID has given.
func (h *EndorsementHandler) EndorsedByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.existingPathUser(w, r)
	if !ok {
		return
	}
	h.writeEndorsements(w, r, userID, h.endorsementService.ListByEndorserWithUsers)
}

// EndorsersOfUserHandler handles GET /api/v1/endorsements/{userID}/endorsers:
// the edges userID has received.
func (h *EndorsementHandler) EndorsersOfUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.existingPathUser(w, r)
	if !ok {
		return
	}
	h.writeEndorsements(w, r, userID, h.endorsementService.ListByEndorsedWithUsers)
}

func (h *EndorsementHandler) existingPathUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if _, ok := currentUserID(w, r); !ok {
		return uuid.Nil, false
	}
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return uuid.Nil, false
	}
	exists, err := h.userService.UserExists(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to look up user")
		return uuid.Nil, false
	}
	if !exists {
		writeJSONError(w, "user not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return userID, true
}

type endorsementLister func(ctx context.Context, userID uuid.UUID) ([]models.EndorsementWithUser, error)

func (h *EndorsementHandler) writeEndorsements(w http.ResponseWriter, r *http.Request, userID uuid.UUID, list endorsementLister) {
	endorsements, err := list(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to list endorsements")
		return
	}
	writeJSONResponse(w, http.StatusOK, endorsements)
}
