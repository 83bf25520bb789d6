package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"matchgraph/internal/models"
	"matchgraph/internal/storage"
)

// Placeholders shown when a referenced user row no longer exists.
const (
	UnknownEmail    = "Unknown"
	UnknownFullName = "Unknown User"
)

// userDirectory resolves display fields for a batch of user ids in one query.
type userDirectory map[uuid.UUID]*models.UserBasicInfo

func loadUserDirectory(ctx context.Context, users storage.UserRepository, ids []uuid.UUID) (userDirectory, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	infos, err := users.GetMultipleBasicInfoByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load user info: %w", err)
	}
	dir := make(userDirectory, len(infos))
	for _, info := range infos {
		dir[info.ID] = info
	}
	return dir, nil
}

// lookup returns the email and full name for id, or the placeholders.
// A user that exists without a full name keeps a nil full name.
func (d userDirectory) lookup(id uuid.UUID) (string, *string) {
	info, ok := d[id]
	if !ok {
		fullName := UnknownFullName
		return UnknownEmail, &fullName
	}
	return info.Email, info.FullName
}
