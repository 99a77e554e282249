package domain

import (
	"fmt"
	"strings"

	apperrors "studyhub/internal/platform/errors"
)

// Identity is what the auth provider hands us: an opaque user id plus the
// credential the remote expects.
type Identity struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

func NewIdentity(userID, token string) (Identity, error) {
	id := Identity{UserID: strings.TrimSpace(userID), Token: strings.TrimSpace(token)}
	if id.UserID == "" {
		return Identity{}, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if strings.ContainsAny(id.UserID, "/:") {
		return Identity{}, fmt.Errorf("%w: user id %q may not contain '/' or ':'", apperrors.ErrInvalidInput, id.UserID)
	}
	return id, nil
}

// DocumentPath is the per-user namespace a record lives under remotely.
func DocumentPath(userID, collection, id string) string {
	return "users/" + userID + "/" + collection + "/" + id
}
