// Package share produces shareable settle-up artifacts for a debt record.
// The QR payload is self-contained: the peer app decodes it offline, so no
// server-side nonce or lookup is involved.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/qarzbook/ledgercore/internal/models"
)

const qrImageSize = 256

// SettleUpPayload is the data encoded into a settle-up QR code.
type SettleUpPayload struct {
	RecordID    string          `json:"recordId"`
	ContactName string          `json:"contactName,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	IssuedAt    int64           `json:"issuedAt"`
}

// SettleUpCode is the rendered artifact: the opaque code string plus a
// base64 PNG ready for an <img> data URI.
type SettleUpCode struct {
	Code     string `json:"code"`
	ImagePNG string `json:"imagePng"`
}

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// WithClock replaces the clock. Test hook.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// SettleUp renders a QR code for the given debt record.
func (g *Generator) SettleUp(debt models.DebtRecord) (SettleUpCode, error) {
	payload := SettleUpPayload{
		RecordID:    debt.RecordID,
		ContactName: debt.ContactName,
		Amount:      debt.Amount,
		Description: debt.Description,
		IssuedAt:    g.now().Unix(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return SettleUpCode{}, fmt.Errorf("encoding settle-up payload: %w", err)
	}
	code := base64.URLEncoding.EncodeToString(jsonData)

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return SettleUpCode{}, fmt.Errorf("rendering settle-up QR: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(qrImageSize)); err != nil {
		return SettleUpCode{}, fmt.Errorf("encoding settle-up QR image: %w", err)
	}

	return SettleUpCode{
		Code:     code,
		ImagePNG: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Decode reverses SettleUp's code string back into its payload.
func Decode(code string) (SettleUpPayload, error) {
	jsonData, err := base64.URLEncoding.DecodeString(code)
	if err != nil {
		return SettleUpPayload{}, fmt.Errorf("malformed settle-up code: %w", err)
	}
	var payload SettleUpPayload
	if err := json.Unmarshal(jsonData, &payload); err != nil {
		return SettleUpPayload{}, fmt.Errorf("malformed settle-up payload: %w", err)
	}
	return payload, nil
}
