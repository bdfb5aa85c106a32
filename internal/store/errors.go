package store

import "fmt"

// ValidationError reports a missing required field on a save. The store is
// unchanged when it is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ErrDuplicateCertificate is returned when a certificate with the same
// internal or public id is appended twice. Certificates are append-only.
type ErrDuplicateCertificate struct {
	CertificateID string
}

func (e *ErrDuplicateCertificate) Error() string {
	return fmt.Sprintf("certificate already exists: %s", e.CertificateID)
}
