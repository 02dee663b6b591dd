package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID int64) ([]byte, error)
}

// DefaultQRGenerator encodes the public tracking URL of an order as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

func (g DefaultQRGenerator) TrackingURL(orderID int64) string {
	return fmt.Sprintf("%s/api/orders/%d/status", g.BaseURL, orderID)
}

func (g DefaultQRGenerator) Generate(orderID int64) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(g.TrackingURL(orderID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
