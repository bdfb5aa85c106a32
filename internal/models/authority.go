package models

import (
	"time"

	"github.com/google/uuid"
)

// SigningAuthority is the named/titled person whose name appears as
// certificate signer. Signature is an opaque image reference (e.g. an S3
// object URL), optional.
type SigningAuthority struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Signature string    `json:"signature,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
