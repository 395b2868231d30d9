package guard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ricmelo/menuhub/internal/domain/section"
	"github.com/ricmelo/menuhub/internal/guard"
)

type fakeOwnership struct {
	getOwnerFn func(ctx context.Context, sectionID string) (string, error)
}

func (f *fakeOwnership) GetSectionOwner(ctx context.Context, sectionID string) (string, error) {
	if f.getOwnerFn != nil {
		return f.getOwnerFn(ctx, sectionID)
	}
	return "", section.ErrNotFound
}

func TestEnsureOwnsSection(t *testing.T) {
	storeErr := errors.New("store blew up")

	tests := []struct {
		name      string
		userID    string
		sectionID string
		owner     string
		ownerErr  error
		wantErr   error
	}{
		{
			name:      "owner passes",
			userID:    "user-a",
			sectionID: "sec-1",
			owner:     "user-a",
			wantErr:   nil,
		},
		{
			name:      "other user is forbidden",
			userID:    "user-b",
			sectionID: "sec-1",
			owner:     "user-a",
			wantErr:   guard.ErrForbidden,
		},
		{
			name:      "missing section is forbidden, not not-found",
			userID:    "user-a",
			sectionID: "sec-ghost",
			ownerErr:  section.ErrNotFound,
			wantErr:   guard.ErrForbidden,
		},
		{
			name:      "empty user is forbidden",
			userID:    "",
			sectionID: "sec-1",
			owner:     "user-a",
			wantErr:   guard.ErrForbidden,
		},
		{
			name:      "empty section is forbidden",
			userID:    "user-a",
			sectionID: "",
			wantErr:   guard.ErrForbidden,
		},
		{
			name:      "store errors pass through",
			userID:    "user-a",
			sectionID: "sec-1",
			ownerErr:  storeErr,
			wantErr:   storeErr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := guard.New(&fakeOwnership{
				getOwnerFn: func(ctx context.Context, sectionID string) (string, error) {
					if tc.ownerErr != nil {
						return "", tc.ownerErr
					}
					return tc.owner, nil
				},
			})

			err := g.EnsureOwnsSection(context.Background(), tc.userID, tc.sectionID)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEnsureOwnsProductTargetReverifiesOwnership(t *testing.T) {
	calls := 0

	g := guard.New(&fakeOwnership{
		getOwnerFn: func(ctx context.Context, sectionID string) (string, error) {
			calls++
			return "user-a", nil
		},
	})

	if err := g.EnsureOwnsProductTarget(context.Background(), "user-b", "sec-1"); !errors.Is(err, guard.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	if calls != 1 {
		t.Fatalf("ownership lookup not consulted, calls=%d", calls)
	}
}
