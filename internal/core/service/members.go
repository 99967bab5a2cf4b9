package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

// lookupUsers loads ids in windows of at most batch users and indexes the
// result by id. Ids with no stored user are absent from the map.
func lookupUsers(ctx context.Context, users ports.UserService, ids []primitive.ObjectID, batch int) (map[primitive.ObjectID]*domain.User, error) {
	if batch <= 0 {
		batch = len(ids)
	}
	found := make(map[primitive.ObjectID]*domain.User, len(ids))
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		page, err := users.FindUsersByIDs(ctx, ids[start:end], ports.Page{Limit: end - start})
		if err != nil {
			return nil, err
		}
		for _, u := range page {
			found[u.ID] = u
		}
	}
	return found, nil
}

// requireUsers fails with a bad request unless every id is a stored user
// whose role is one of roles.
func requireUsers(ctx context.Context, users ports.UserService, ids []primitive.ObjectID, batch int, roles ...domain.Role) error {
	found, err := lookupUsers(ctx, users, ids, batch)
	if err != nil {
		return err
	}
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			return domain.BadRequest("user %s does not exist", id.Hex())
		}
		if !hasRole(u, roles) {
			return domain.BadRequest("user %s is not a %s", id.Hex(), roleList(roles))
		}
	}
	return nil
}

func hasRole(u *domain.User, roles []domain.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func roleList(roles []domain.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}
