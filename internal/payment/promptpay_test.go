package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC16KnownVector(t *testing.T) {
	// standard check value for CRC-16/CCITT-FALSE
	require.Equal(t, uint16(0x29B1), crc16("123456789"))
}

func TestNormalizeTarget(t *testing.T) {
	testCases := []struct {
		name    string
		target  string
		wantSub string
		wantVal string
		wantErr bool
	}{
		{name: "mobile", target: "0812345678", wantSub: "01", wantVal: "0066812345678"},
		{name: "mobile with dashes", target: "081-234-5678", wantSub: "01", wantVal: "0066812345678"},
		{name: "tax id", target: "1234567890123", wantSub: "02", wantVal: "1234567890123"},
		{name: "garbage", target: "abc", wantErr: true},
		{name: "too short", target: "12345", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub, val, err := normalizeTarget(tc.target)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrBadTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSub, sub)
			assert.Equal(t, tc.wantVal, val)
		})
	}
}

func TestBuildPayloadStructure(t *testing.T) {
	p, err := BuildPayload("0812345678", 49900) // 499.00 THB
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p, "000201"), "payload format indicator first")
	assert.Contains(t, p, "010212", "dynamic point of initiation when amount present")
	assert.Contains(t, p, "A000000677010111", "promptpay application id")
	assert.Contains(t, p, "0066812345678")
	assert.Contains(t, p, "5303764", "currency THB")
	assert.Contains(t, p, "5406499.00", "amount field with length")
	assert.Contains(t, p, "5802TH")

	// trailing CRC covers everything up to and including "6304"
	require.Greater(t, len(p), 8)
	body, sum := p[:len(p)-4], p[len(p)-4:]
	assert.True(t, strings.HasSuffix(body, "6304"))
	assert.Equal(t, len(sum), 4)
	for _, c := range sum {
		assert.Contains(t, "0123456789ABCDEF", string(c))
	}
}

func TestBuildPayloadStaticWhenNoAmount(t *testing.T) {
	p, err := BuildPayload("0812345678", 0)
	require.NoError(t, err)
	assert.Contains(t, p, "010211", "static point of initiation")
	assert.NotContains(t, p, ".", "no amount field")
}

func TestBuildPayloadBadTarget(t *testing.T) {
	_, err := BuildPayload("not-a-number", 1000)
	require.ErrorIs(t, err, ErrBadTarget)
}

func TestQRDataURL(t *testing.T) {
	g := &Generator{Target: "0812345678"}
	url, err := g.QRDataURL(150000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	assert.Greater(t, len(url), 100)
}
