package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

// Aggregate names used in missing-reference messages.
const (
	aggregateCategories  = "categories"
	aggregateGenres      = "genres"
	aggregateCastMembers = "cast members"
)

// checkReferences verifies that every id exists using a single batched lookup.
//
// Missing ids are listed once each, in the order they were requested, in a
// single *validation.Failure. Lookup errors are wrapped and returned so that a
// Notification does not swallow them.
func checkReferences[ID ~string](
	ctx context.Context,
	aggregate string,
	ids []ID,
	existsByIDs func(context.Context, []ID) ([]ID, error),
) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := existsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("check %s: %w", aggregate, err)
	}

	existing := make(map[ID]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}

	reported := make(map[ID]struct{})
	var missing []string
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := reported[id]; ok {
			continue
		}
		reported[id] = struct{}{}
		missing = append(missing, string(id))
	}

	if len(missing) == 0 {
		return nil
	}

	msg := fmt.Sprintf("Some %s could not be found: %s", aggregate, strings.Join(missing, ", "))
	return validation.NewFailure(msg, []validation.Error{validation.NewError(msg)})
}
