// Package guard is the single place catalog ownership is decided. Every
// mutating route goes through it instead of doing ad hoc checks.
package guard

import (
	"context"
	"errors"

	"github.com/ricmelo/menuhub/internal/domain/section"
)

// ErrForbidden covers both "not yours" and "does not exist", so a caller can
// never probe for another owner's resources.
var ErrForbidden = errors.New("forbidden")

// Keep this small interface so tests can fake it easily.
type SectionOwnership interface {
	GetSectionOwner(ctx context.Context, sectionID string) (string, error)
}

type Guard struct {
	sections SectionOwnership
}

func New(sections SectionOwnership) *Guard {
	return &Guard{sections: sections}
}

// EnsureOwnsSection fails unless sectionID exists and belongs to userID.
func (g *Guard) EnsureOwnsSection(ctx context.Context, userID, sectionID string) error {
	if userID == "" || sectionID == "" {
		return ErrForbidden
	}

	owner, err := g.sections.GetSectionOwner(ctx, sectionID)

	if err != nil {
		if errors.Is(err, section.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}

	if owner != userID {
		return ErrForbidden
	}

	return nil
}

// EnsureOwnsProductTarget gates product creation under a client-supplied
// section id. Ownership is re-verified against the store at creation time;
// the id is never trusted as presented.
func (g *Guard) EnsureOwnsProductTarget(ctx context.Context, userID, sectionID string) error {
	return g.EnsureOwnsSection(ctx, userID, sectionID)
}
