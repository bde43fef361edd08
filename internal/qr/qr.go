// Package qr encodes passenger-identity records to QR images and decodes
// them back. The payload is plaintext JSON embedded directly in the image;
// there is no encryption or signing.
package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/aerox-airport/lost-luggage/internal/models"
)

// ErrInvalidFormat is returned when a decoded payload is not a parseable
// passenger-identity record.
var ErrInvalidFormat = errors.New("invalid QR code format")

// ImageSize is the pixel size of generated QR images, chosen for on-screen
// display and PNG export.
const ImageSize = 256

// Encode serializes the identity to a PNG QR image at error-correction
// level High.
func Encode(identity models.PassengerIdentity) ([]byte, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("marshal identity: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.High, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}

// DecodeImage extracts and parses the identity payload from a decoded image,
// such as a camera frame.
func DecodeImage(img image.Image) (*models.PassengerIdentity, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("prepare qr image: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("no QR code found in image: %w", err)
	}

	return parsePayload(result.GetText())
}

// DecodeFile reads a PNG or JPEG stream and decodes the embedded identity.
// The file path and the camera path converge on the same parse step.
func DecodeFile(r io.Reader) (*models.PassengerIdentity, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image file: %w", err)
	}
	return DecodeImage(img)
}

// parsePayload validates that the raw QR text is a passenger-identity record.
func parsePayload(text string) (*models.PassengerIdentity, error) {
	var identity models.PassengerIdentity
	if err := json.Unmarshal([]byte(text), &identity); err != nil {
		return nil, ErrInvalidFormat
	}
	if identity.IsZero() {
		return nil, ErrInvalidFormat
	}
	return &identity, nil
}
