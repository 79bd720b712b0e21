package contact

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "RU"

var (
	// +7 / 8 prefix, then 3-3-2-2 digits with optional separators.
	phoneRE = regexp.MustCompile(`(?:\+7|8|7)?[\s\-.]?\(?\d{3}\)?[\s\-.]?\d{3}[\s\-.]?\d{2}[\s\-.]?\d{2}`)
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[\p{L}0-9.\-]+\.\p{L}{2,}`)

	// Keywords must start a word so that "хотел" does not read as "тел".
	phoneKeywordRE = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:тел|моб|звон|позвон|whatsapp|ватсап|вацап|phone)`)
)

// Extract scans a message for a phone number and an e-mail address.
// It has no side effects and is safe for concurrent use.
func Extract(message string) Contacts {
	return Contacts{
		Phone: ExtractPhone(message),
		Email: ExtractEmail(message),
	}
}

// ExtractPhone returns the first phone-shaped substring, normalized to E.164
// when libphonenumber accepts it. A phone keyword without a parseable number
// yields Mentioned.
func ExtractPhone(message string) Value {
	if raw := firstPhone(message); raw != "" {
		return Recognized(NormalizePhone(raw))
	}
	if strings.Contains(message, "+7") || phoneKeywordRE.MatchString(message) {
		return Mentioned()
	}
	return Value{}
}

// ExtractEmail returns the first address-shaped substring, lower-cased.
// An "@" without a parseable address yields Mentioned.
func ExtractEmail(message string) Value {
	if match := emailRE.FindString(message); match != "" {
		return Recognized(strings.ToLower(strings.TrimRight(match, ".-")))
	}
	if strings.Contains(message, "@") {
		return Mentioned()
	}
	return Value{}
}

// NormalizePhone formats a Russian number as E.164. If parsing fails it returns the trimmed input.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// StripContacts removes phone- and e-mail-shaped fragments so their digits are
// not mistaken for other numbers.
func StripContacts(message string) string {
	message = emailRE.ReplaceAllString(message, " ")
	for _, loc := range phoneLocations(message) {
		message = message[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + message[loc[1]:]
	}
	return message
}

func firstPhone(message string) string {
	locs := phoneLocations(message)
	if len(locs) == 0 {
		return ""
	}
	return strings.TrimSpace(message[locs[0][0]:locs[0][1]])
}

// phoneLocations returns matches that are not glued to further digits.
func phoneLocations(message string) [][]int {
	var out [][]int
	for _, loc := range phoneRE.FindAllStringIndex(message, -1) {
		if digitBefore(message, loc[0]) || digitAfter(message, loc[1]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func digitBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsDigit(r)
}

func digitAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsDigit(r)
}
