package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// Generate creates a size×size QR code PNG image for the given URL.
func Generate(url string, size int) ([]byte, error) {
	png, err := qr.Encode(url, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", url, err)
	}
	return png, nil
}
