// Package qrlink builds verification links and their QR code images.
package qrlink

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the QR image edge length in pixels.
const DefaultSize = 200

// Link returns the verification URL encoded into certificate QR codes:
// <verificationURL>?id=<certificateID>. Certificate ids are URL-safe by
// construction, so no escaping is applied.
func Link(verificationURL, certificateID string) string {
	return fmt.Sprintf("%s?id=%s", verificationURL, certificateID)
}

// PNG encodes the verification link for a certificate as a PNG QR image.
func PNG(verificationURL, certificateID string) ([]byte, error) {
	png, err := qrcode.Encode(Link(verificationURL, certificateID), qrcode.Medium, DefaultSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
