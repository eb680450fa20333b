package payment

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// Generator turns an order total into a scannable payment image for the
// shop's PromptPay target.
type Generator struct {
	Target string // mobile number or 13-digit id
}

// QRDataURL renders the payment payload as a PNG data URL the front end
// can drop into an <img> tag.
func (g *Generator) QRDataURL(amountSatang int) (string, error) {
	payload, err := BuildPayload(g.Target, amountSatang)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
