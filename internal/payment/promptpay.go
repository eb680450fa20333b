package payment

import (
	"errors"
	"fmt"
	"strings"
)

// PromptPay EMV merchant-presented payload. Field layout: two-digit id,
// two-digit length, value; field 29 nests the PromptPay application id
// and the account; field 63 is a CRC-16/CCITT-FALSE over everything
// including its own "6304" prefix.

const promptPayAID = "A000000677010111"

var ErrBadTarget = errors.New("promptpay target must be a phone number or 13-digit id")

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// normalizeTarget turns a shop PromptPay id into its payload form:
// a mobile number becomes 0066 + the 9 digits after the leading zero,
// a 13-digit tax/citizen id passes through.
func normalizeTarget(target string) (sub string, value string, err error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, target)
	switch {
	case len(digits) == 13:
		return "02", digits, nil
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "01", "0066" + digits[1:], nil
	default:
		return "", "", ErrBadTarget
	}
}

// BuildPayload renders the scannable payload for the given amount in
// satang. Amount 0 produces a static (amount-less) code.
func BuildPayload(target string, amountSatang int) (string, error) {
	sub, acct, err := normalizeTarget(target)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(tlv("00", "01")) // payload format indicator
	if amountSatang > 0 {
		b.WriteString(tlv("01", "12")) // dynamic: one payment
	} else {
		b.WriteString(tlv("01", "11")) // static: reusable
	}
	merchant := tlv("00", promptPayAID) + tlv(sub, acct)
	b.WriteString(tlv("29", merchant))
	b.WriteString(tlv("53", "764")) // THB
	if amountSatang > 0 {
		b.WriteString(tlv("54", fmt.Sprintf("%d.%02d", amountSatang/100, amountSatang%100)))
	}
	b.WriteString(tlv("58", "TH"))

	data := b.String() + "6304"
	return data + fmt.Sprintf("%04X", crc16(data)), nil
}

// crc16 is CRC-16/CCITT-FALSE: poly 0x1021, init 0xFFFF, no reflection.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
