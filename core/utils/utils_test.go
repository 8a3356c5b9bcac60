package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 42, ToInt(42))
	assert.Equal(t, 42, ToInt(float64(42.9)))
	assert.Equal(t, 42, ToInt(" 42 "))
	assert.Equal(t, 7, ToInt(json.Number("7")))
	assert.Equal(t, 0, ToInt(nil))
	assert.Equal(t, 0, ToInt("abc"))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(9007199254740), ToInt64("9007199254740"))
	assert.Equal(t, int64(12), ToInt64(float64(12)))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "1234", ToString(float64(1234)))
	assert.Equal(t, "12.5", ToString(12.5))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "99", ToString(json.Number("99")))
	assert.Equal(t, "", ToString(nil))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("true"))
	assert.True(t, ToBool(1))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"Float", 199.5, "199.5", true},
		{"String with comma", "1 299,50", "1299.5", true},
		{"Json number", json.Number("10"), "10", true},
		{"Empty string", "", "0", false},
		{"Garbage", "n/a", "0", false},
		{"Nil", nil, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDecimal(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Дверь Межкомнатная 80", "dver-mezhkomnatnaya-80"},
		{"  ABC-123 ", "abc-123"},
		{"Café Crème", "cafe-creme"},
		{"Объём", "obem"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
