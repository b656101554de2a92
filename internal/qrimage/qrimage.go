package qrimage

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// PNG renders payload as a QR code image. The payload is written verbatim;
// high error correction keeps the code scannable from phone screens.
func PNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("payload is empty")
	}
	png, err := qrcode.Encode(payload, qrcode.High, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("encoding qr: %w", err)
	}
	return png, nil
}

// ClampSize maps a requested edge length in pixels into [MinSize, MaxSize];
// non-positive values select DefaultSize.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}
