package keyboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCallback(t *testing.T) {
	testCases := []struct {
		name      string
		unique    string
		data      string
		expected  string
		expectErr bool
	}{
		{name: "unique only", unique: "use_saved", expected: "use_saved"},
		{name: "unique with data", unique: "toggle_auto", data: "on", expected: "toggle_auto:on"},
		{name: "exactly at limit", unique: strings.Repeat("a", 60), data: "xyz", expected: strings.Repeat("a", 60) + ":xyz"},
		{name: "over limit", unique: strings.Repeat("a", 60), data: "wxyz", expectErr: true},
		{name: "unique alone over limit", unique: strings.Repeat("b", 65), expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			payload, err := EncodeCallback(tc.unique, tc.data)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, payload)
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		expUnique  string
		expPayload string
		expectErr  bool
	}{
		{name: "unique only", input: "use_saved", expUnique: "use_saved"},
		{name: "unique with data", input: "toggle_auto:on", expUnique: "toggle_auto", expPayload: "on"},
		{name: "payload with separator", input: "page:3:extra", expUnique: "page", expPayload: "3:extra"},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			unique, data, err := DecodeCallback(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expUnique, unique)
			assert.Equal(t, tc.expPayload, data)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload, err := EncodeCallback("use_saved", "42")
	assert.NoError(t, err)

	unique, data, err := DecodeCallback(payload)
	assert.NoError(t, err)
	assert.Equal(t, "use_saved", unique)
	assert.Equal(t, "42", data)
}
