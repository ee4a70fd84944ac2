package catalog

import (
	"context"
	"strings"
)

// maxPhoneLen matches the operational store column width; longer values are
// truncated on normalization, not rejected.
const maxPhoneLen = 20

// Botanist is a dimension row matched by (name, email) so repeated payloads
// for the same person never grow the table.
type Botanist struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Validate checks the natural key.
func (b Botanist) Validate() error {
	if strings.TrimSpace(b.Name) == "" && strings.TrimSpace(b.Email) == "" {
		return ErrEmptyBotanistKey
	}
	return nil
}

// NormalizePhone truncates the phone field to the stored column width.
func (b *Botanist) NormalizePhone() {
	if len(b.Phone) > maxPhoneLen {
		b.Phone = b.Phone[:maxPhoneLen]
	}
}

// BotanistRepository resolves botanists by natural key.
type BotanistRepository interface {
	// Ensure resolves (name, email) to a surrogate id, inserting only when
	// the key is unseen. Existing rows are left unchanged.
	Ensure(ctx context.Context, botanist Botanist) (id int64, created bool, err error)
	// GetByKey loads a botanist by natural key. Returns ErrBotanistNotFound on miss.
	GetByKey(ctx context.Context, name, email string) (*Botanist, error)
}
