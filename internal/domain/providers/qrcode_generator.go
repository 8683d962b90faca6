package providers

// QRCodeGenerator renders content as a PNG QR code
type QRCodeGenerator interface {
	Generate(content string) ([]byte, error)
}
