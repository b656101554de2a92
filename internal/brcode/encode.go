package brcode

import (
	"strings"
	"unicode/utf8"

	"github.com/alovak/pix-donations/internal/checksum"
)

// Fixed values of a static PIX payload.
const (
	PayloadFormatIndicator = "01"
	GUI                    = "BR.GOV.BCB.PIX"
	CategoryCode           = "0000"
	CurrencyBRL            = "986"
	CountryBR              = "BR"
	NoReference            = "***"

	MaxNameLen = 25
	MaxCityLen = 15
)

// checksumPrefix is the tag and declared length of the checksum field. The
// checksum covers every field before it plus this prefix, never its own value.
const checksumPrefix = TagCRC + "04"

const checksumLen = 4

// Profile is the beneficiary shown by the payer's banking app.
type Profile struct {
	Name string
	City string
}

// Fields returns the payload fields in wire order, without the checksum.
// Name and city are upper-cased and cut to MaxNameLen and MaxCityLen bytes.
func Fields(key string, p Profile) []Field {
	return []Field{
		{Tag: TagPayloadFormat, Value: PayloadFormatIndicator},
		Template(TagMerchantAccount,
			Field{Tag: TagGUI, Value: GUI},
			Field{Tag: TagPixKey, Value: key},
		),
		{Tag: TagCategoryCode, Value: CategoryCode},
		{Tag: TagCurrency, Value: CurrencyBRL},
		{Tag: TagCountry, Value: CountryBR},
		{Tag: TagMerchantName, Value: truncate(strings.ToUpper(p.Name), MaxNameLen)},
		{Tag: TagMerchantCity, Value: truncate(strings.ToUpper(p.City), MaxCityLen)},
		Template(TagAdditionalData,
			Field{Tag: TagReferenceLabel, Value: NoReference},
		),
	}
}

// Encode builds the sealed payload for key and p. The key is used verbatim;
// a key that does not fit its field yields a *FieldTooLongError.
//
// Name and city are upper-cased and cut to MaxNameLen and MaxCityLen bytes.
// The cut never splits a multi-byte character, so a non-ASCII name longer
// than the limit may be declared with a length below it (24 for 24 "A"s
// followed by "É").
func Encode(key string, p Profile) (string, error) {
	body, err := Render(Fields(key, p)...)
	if err != nil {
		return "", err
	}
	return Seal(body), nil
}

// Seal appends the checksum field to an already rendered body.
func Seal(body string) string {
	covered := body + checksumPrefix
	return covered + checksum.Checksum(covered)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
