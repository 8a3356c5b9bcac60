package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		product string
		wantCat string
		wantSub string
	}{
		{"Scanner", "Scanner X", "scanners", ""},
		{"Handheld scanner ru", "Сканер штрих-кода ручной беспроводной", "scanners", "handheld"},
		{"Receipt printer", "Принтер чеков АТОЛ 30Ф", "printers", "receipt"},
		{"Fiscal register", "ККТ АТОЛ 91Ф фискальный регистратор", "pos-systems", "fiscal-registers"},
		{"Scales", "Весы торговые настольные", "scales", "counter"},
		{"Rolls", "Чековая лента 57мм рулон", "consumables", "receipt-rolls"},
		{"Default with sub", "Кабель USB 1.5 м", DefaultCategory, "cables"},
		{"Default without sub", "Unknown gadget", DefaultCategory, ""},
		{"Empty", "", DefaultCategory, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := Classify(tt.product)
			assert.Equal(t, tt.wantCat, cat)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestClassify_TieGoesToFirstDeclared(t *testing.T) {
	// One keyword each for printers ("label") and scanners ("barcode").
	cat, _ := Classify("barcode label")
	assert.Equal(t, "scanners", cat)
}

func TestClassify_Deterministic(t *testing.T) {
	first, firstSub := Classify("Сканер штрих-кода ручной")
	for i := 0; i < 10; i++ {
		cat, sub := Classify("Сканер штрих-кода ручной")
		assert.Equal(t, first, cat)
		assert.Equal(t, firstSub, sub)
	}
}
