// Package brcode builds and checks PIX "copy and paste" payloads: EMV
// merchant-presented-mode strings made of tag-length-value fields and sealed
// with a CRC-16 checksum.
package brcode

import (
	"fmt"
	"strings"
)

// MaxValueLen is the largest value a two digit length can describe.
const MaxValueLen = 99

// Top level tags.
const (
	TagPayloadFormat   = "00"
	TagMerchantAccount = "26"
	TagCategoryCode    = "52"
	TagCurrency        = "53"
	TagCountry         = "58"
	TagMerchantName    = "59"
	TagMerchantCity    = "60"
	TagAdditionalData  = "62"
	TagCRC             = "63"
)

// Tags nested inside the merchant account and additional data templates.
const (
	TagGUI            = "00"
	TagPixKey         = "01"
	TagReferenceLabel = "05"
)

// Field is one tag-length-value unit. A field with Children is a template:
// its value is the serialised children.
type Field struct {
	Tag      string
	Value    string
	Children []Field
}

// Template builds a composite field out of sub-fields.
func Template(tag string, children ...Field) Field {
	return Field{Tag: tag, Children: children}
}

// Render serialises f. Templates render their children first and wrap the
// resulting blob as the value, so the outer length is the blob length.
func (f Field) Render() (string, error) {
	if len(f.Tag) != 2 || !isDigits(f.Tag) {
		return "", fmt.Errorf("tag %q: %w", f.Tag, ErrMalformed)
	}
	value := f.Value
	if f.Children != nil {
		blob, err := Render(f.Children...)
		if err != nil {
			return "", fmt.Errorf("template %s: %w", f.Tag, err)
		}
		value = blob
	}
	if len(value) > MaxValueLen {
		return "", &FieldTooLongError{Tag: f.Tag, Length: len(value)}
	}
	return fmt.Sprintf("%s%02d%s", f.Tag, len(value), value), nil
}

// Render serialises fields in the given order.
func Render(fields ...Field) (string, error) {
	var sb strings.Builder
	for _, f := range fields {
		s, err := f.Render()
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
