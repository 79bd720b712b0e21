package qualification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAmount(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   int64
		wantOK bool
	}{
		{"plain", "Нужна арматура на 75000 рублей", 75000, true},
		{"space grouped", "бюджет 75 000 руб", 75000, true},
		{"nbsp grouped", "бюджет 75 000 ₽", 75000, true},
		{"dot grouped", "сумма 1.200.000", 1200000, true},
		{"comma grouped", "около 50,000 руб.", 50000, true},
		{"k suffix", "заказ на 60к", 60000, true},
		{"k suffix spaced", "заказ на 60 k", 60000, true},
		{"thousand word", "на 50 тыс. руб", 50000, true},
		{"thousand full word", "примерно 120 тысяч", 120000, true},
		{"million decimal", "проект на 1,5 млн", 1500000, true},
		{"million word", "2 миллиона на металлопрокат", 2000000, true},
		{"largest wins", "3 тонны, 10 метров, итого 90 000", 90000, true},
		{"kilograms are not thousands", "500 кг", 500, true},
		{"code prefix ignored", "артикул A125000", 0, false},
		{"no digits", "добрый день", 0, false},
		{"phone ignored", "звоните +7 916 123-45-67", 0, false},
		{"email ignored", "почта buyer100500@mail.ru", 0, false},
		{"phone beside amount", "на 80 000, тел 8 (916) 123-45-67", 80000, true},
		{"kopecks after space grouping", "Бюджет 75 000,00 руб", 75000, true},
		{"kopecks after dot grouping", "Сумма 1.200.000,00 руб", 1200000, true},
		{"kopecks with dot", "сумма заказа 120 000.50 руб", 120000, true},
		{"kopecks after comma grouping", "итого 1,250,000.5", 1250000, true},
		{"k before currency", "заказ на 70 k руб", 70000, true},
		{"preposition k", "привезите 60 к пятнице", 60, true},
		{"preposition k with other numbers", "доставка 100 к складу, арматура 12 мм", 100, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectAmount(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	ok, amount := Evaluate("заказ на 50000", DefaultThreshold)
	assert.True(t, ok)
	assert.Equal(t, int64(50000), amount)

	ok, amount = Evaluate("заказ на 49999", DefaultThreshold)
	assert.False(t, ok)
	assert.Equal(t, int64(49999), amount)

	ok, _ = Evaluate("заказ на 50 000 руб", DefaultThreshold)
	assert.True(t, ok)

	ok, _ = Evaluate("Бюджет 75 000,00 руб", DefaultThreshold)
	assert.True(t, ok)

	ok, _ = Evaluate("привезите 60 к пятнице", DefaultThreshold)
	assert.False(t, ok)

	ok, amount = Evaluate("просто вопрос", DefaultThreshold)
	assert.False(t, ok)
	assert.Zero(t, amount)
}

func TestParseNumberSplitsUngroupedRuns(t *testing.T) {
	assert.Equal(t, []float64{2024, 10}, parseNumber("2024 10"))
	assert.Equal(t, []float64{75000}, parseNumber("75 000"))
	assert.Equal(t, []float64{1.5}, parseNumber("1,5"))
	assert.Equal(t, []float64{75000}, parseNumber("75 000,00"))
	assert.Equal(t, []float64{1200000}, parseNumber("1.200.000,00"))
	assert.Equal(t, []float64{1200000}, parseNumber("1.200.000"))
}
