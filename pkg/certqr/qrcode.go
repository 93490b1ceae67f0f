// Package certqr renders QR codes pointing at a certificate's public verification page.
package certqr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
	qrsvg "github.com/wamuir/svg-qr-code"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"

	// Size in pixels of PNG output, large enough to print on an A4 certificate.
	DefaultSize = 256
)

var ErrUnsupportedFormat = errors.New("unsupported qr code format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Encode returns the QR code image for link.
func Encode(link string, format Format, size int) ([]byte, error) {
	if link == "" {
		return nil, errors.New("qr code link is empty")
	}
	if size <= 0 {
		size = DefaultSize
	}

	switch format {
	case FormatPNG:
		png, err := qrcode.Encode(link, qrcode.Medium, size)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		return png, nil
	case FormatSVG:
		qr, err := qrsvg.New(link)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code: %w", err)
		}
		return []byte(qr.String()), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
