package qrcode

import (
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// DefaultSize is the PNG edge length in pixels
const DefaultSize = 256

// Generator renders PNG QR codes with medium error correction
type Generator struct {
	size int
}

// NewGenerator creates a QR code generator; a non-positive size uses DefaultSize
func NewGenerator(size int) providers.QRCodeGenerator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// Generate encodes content as a PNG
func (g *Generator) Generate(content string) ([]byte, error) {
	png, err := goqrcode.Encode(content, goqrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
