package brcode

import "strconv"

// Payload is a decoded payload, fields in wire order.
type Payload []Field

// Lookup returns the first top level field with tag.
func (p Payload) Lookup(tag string) (Field, bool) {
	for _, f := range p {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}

// Child returns the first sub-field of f with tag.
func (f Field) Child(tag string) (Field, bool) {
	for _, c := range f.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return Field{}, false
}

// Parse decodes a payload into its fields. Merchant account templates (26-51)
// and the additional data template (62) are decoded one level deep. Parse does
// not check the checksum; see Validate.
func Parse(payload string) (Payload, error) {
	fields, err := parseFields(payload, 0, true)
	if err != nil {
		return nil, err
	}
	return Payload(fields), nil
}

func parseFields(s string, base int, nested bool) ([]Field, error) {
	var out []Field
	for pos := 0; pos < len(s); {
		if len(s)-pos < 4 {
			return nil, &SyntaxError{Offset: base + pos, Msg: "truncated field header"}
		}
		tag, size := s[pos:pos+2], s[pos+2:pos+4]
		if !isDigits(tag) {
			return nil, &SyntaxError{Offset: base + pos, Msg: "tag " + strconv.Quote(tag) + " is not numeric"}
		}
		if !isDigits(size) {
			return nil, &SyntaxError{Offset: base + pos + 2, Msg: "length " + strconv.Quote(size) + " is not numeric"}
		}
		n, _ := strconv.Atoi(size)
		start := pos + 4
		if start+n > len(s) {
			return nil, &SyntaxError{Offset: base + start, Msg: "value of " + tag + " runs past end of input"}
		}
		f := Field{Tag: tag, Value: s[start : start+n]}
		if nested && isTemplate(tag) {
			children, err := parseFields(f.Value, base+start, false)
			if err != nil {
				return nil, err
			}
			f.Children = children
		}
		out = append(out, f)
		pos = start + n
	}
	return out, nil
}

func isTemplate(tag string) bool {
	n, _ := strconv.Atoi(tag)
	return (n >= 26 && n <= 51) || tag == TagAdditionalData
}
