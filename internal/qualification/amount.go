// Package qualification decides which chat messages are large-order leads and
// drives the per-session contact collection dialogue.
package qualification

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fortis-steel/chatbot-api/internal/contact"
)

// DefaultThreshold is the minimum order amount, in roubles, that qualifies.
const DefaultThreshold int64 = 50000

// maxAmount keeps float conversion exact and far from int64 overflow.
const maxAmount = 1e15

var (
	// Digit runs joined by single separators, optionally followed by a word
	// such as "тыс", "млн" or "руб".
	amountRE = regexp.MustCompile(`\d+(?:[ \x{00A0}.,]\d+)*(?:[ \x{00A0}]?(\p{L}+))?`)
	groupRE  = regexp.MustCompile(`[ \x{00A0}.,]`)
)

func multiplier(word string) float64 {
	w := strings.ToLower(word)
	switch {
	case w == "тыс" || strings.HasPrefix(w, "тысяч") || strings.HasPrefix(w, "тыщ"):
		return 1e3
	case w == "млн" || strings.HasPrefix(w, "миллион") || w == "mln":
		return 1e6
	case w == "млрд" || strings.HasPrefix(w, "миллиард"):
		return 1e9
	default:
		return 1
	}
}

// suffixMultiplier reads the word at text[start:end] that follows a number.
// A spaced "к"/"k" counts as thousands only before a currency word or at the
// end of the text; elsewhere it is the preposition.
func suffixMultiplier(text string, start, end int) float64 {
	word := strings.ToLower(text[start:end])
	if word != "к" && word != "k" {
		return multiplier(word)
	}
	if start > 0 && isDigit(text[start-1]) {
		return 1e3
	}
	fields := strings.Fields(strings.TrimLeft(text[end:], " \u00a0.,!?;:)"))
	if len(fields) == 0 {
		return 1e3
	}
	next := strings.ToLower(fields[0])
	for _, cur := range currencyWords {
		if strings.HasPrefix(next, cur) {
			return 1e3
		}
	}
	return 1
}

var currencyWords = []string{"руб", "р.", "₽", "rub", "rur"}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// DetectAmount returns the largest money amount mentioned in message.
// Phone numbers and e-mail addresses are ignored.
func DetectAmount(message string) (int64, bool) {
	text := contact.StripContacts(message)

	var best int64
	found := false
	for _, m := range amountRE.FindAllStringSubmatchIndex(text, -1) {
		numEnd := m[1]
		mult := 1.0
		if m[2] >= 0 {
			mult = suffixMultiplier(text, m[2], m[3])
			numEnd = m[2]
		}
		// A letter glued to the front means a code like "A12345", not money.
		if isLetterBefore(text, m[0]) {
			continue
		}
		values := parseNumber(strings.TrimRight(text[m[0]:numEnd], " \u00a0"))
		for i, v := range values {
			if i == len(values)-1 {
				v *= mult
			}
			if v <= 0 || v > maxAmount {
				continue
			}
			amount := int64(math.Round(v))
			if !found || amount > best {
				best = amount
				found = true
			}
		}
	}
	return best, found
}

// parseNumber reads "75 000", "1.200.000", "1,5" or "2024 10". Tokens whose
// groups do not form a thousands grouping are read as separate numbers.
func parseNumber(token string) []float64 {
	if whole, ok := splitKopecks(token); ok {
		return []float64{parseDigits(whole)}
	}
	groups := groupRE.Split(token, -1)
	if len(groups) == 1 {
		return []float64{parseDigits(token)}
	}
	if isThousandsGrouping(groups) {
		return []float64{parseDigits(strings.Join(groups, ""))}
	}
	if len(groups) == 2 && !strings.ContainsAny(token, " \u00a0") {
		v, err := strconv.ParseFloat(groups[0]+"."+groups[1], 64)
		if err == nil {
			return []float64{v}
		}
	}
	fields := strings.FieldsFunc(token, func(r rune) bool { return r == ' ' || r == '\u00a0' })
	if len(fields) > 1 {
		var out []float64
		for _, f := range fields {
			out = append(out, parseNumber(f)...)
		}
		return out
	}
	out := make([]float64, 0, len(groups))
	for _, g := range groups {
		out = append(out, parseDigits(g))
	}
	return out
}

// splitKopecks drops a one- or two-digit kopeck part from a thousands-grouped
// integer, as in "75 000,00" or "1.200.000,00", and returns the rouble digits.
// The fraction separator must not also be used for grouping.
func splitKopecks(token string) (string, bool) {
	i := strings.LastIndexAny(token, ".,")
	if i < 0 {
		return "", false
	}
	if frac := token[i+1:]; len(frac) == 0 || len(frac) > 2 {
		return "", false
	}
	whole := token[:i]
	if strings.IndexByte(whole, token[i]) >= 0 {
		return "", false
	}
	groups := groupRE.Split(whole, -1)
	if len(groups) < 2 || !isThousandsGrouping(groups) {
		return "", false
	}
	return strings.Join(groups, ""), true
}

func isThousandsGrouping(groups []string) bool {
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func parseDigits(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func isLetterBefore(s string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r)
}

// Evaluate reports whether message names an amount at or above threshold.
func Evaluate(message string, threshold int64) (bool, int64) {
	amount, ok := DetectAmount(message)
	if !ok {
		return false, 0
	}
	return amount >= threshold, amount
}
