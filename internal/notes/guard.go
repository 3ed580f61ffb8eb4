package notes

import (
	"errors"

	"github.com/krabbel/backend/internal/auth"
	"github.com/krabbel/backend/internal/models"
)

// ErrForbidden indicates the caller is not allowed to act on the note. The
// HTTP layer surfaces it as a not-found so note IDs cannot be probed.
var ErrForbidden = errors.New("not allowed to access this note")

// authorize enforces ownership on a fetched note. Reads of public notes
// need no identity; everything else requires the caller to own the note.
// Role grants no bypass.
func authorize(ident *auth.Identity, note models.Note, readOnly bool) error {
	if readOnly && note.IsPublic {
		return nil
	}
	if ident == nil || note.OwnerID != ident.UserID {
		return ErrForbidden
	}
	return nil
}
