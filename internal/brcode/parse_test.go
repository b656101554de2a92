package brcode

import (
	"errors"
	"testing"
)

func TestParse_DecodesTemplates(t *testing.T) {
	payload, err := Encode(testKey, Profile{Name: "DELHEY", City: "SAO PAULO"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	acct, ok := parsed.Lookup(TagMerchantAccount)
	if !ok {
		t.Fatalf("merchant account missing")
	}
	if len(acct.Value) != 58 || len(acct.Children) != 2 {
		t.Fatalf("merchant account got len=%d children=%d", len(acct.Value), len(acct.Children))
	}

	add, ok := parsed.Lookup(TagAdditionalData)
	if !ok {
		t.Fatalf("additional data missing")
	}
	ref, ok := add.Child(TagReferenceLabel)
	if !ok || ref.Value != NoReference {
		t.Fatalf("reference label got %+v", ref)
	}

	crc, ok := parsed.Lookup(TagCRC)
	if !ok || crc.Value != "1ABD" {
		t.Fatalf("crc field got %+v", crc)
	}

	for _, tag := range []string{TagPayloadFormat, TagCategoryCode, TagCurrency, TagCountry} {
		f, _ := parsed.Lookup(tag)
		if len(f.Children) != 0 {
			t.Fatalf("tag %s must not be decoded as a template", tag)
		}
	}
}

func TestParse_RenderIsInverse(t *testing.T) {
	payload, err := Encode("doacoes@example.org", Profile{Name: "Casa de Apoio", City: "Recife"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	again, err := Render(parsed...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if again != payload {
		t.Fatalf("Render(Parse(p)) got\n%s\nwant\n%s", again, payload)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		in     string
		offset int
	}{
		{"000", 0},
		{"0002010", 6},
		{"AB0201", 0},
		{"00X201", 2},
		{"000501", 4},
		{"260400X1", 6},
	}
	for _, c := range cases {
		_, err := Parse(c.in)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q) expected ErrMalformed, got %v", c.in, err)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Parse(%q) expected *SyntaxError, got %T", c.in, err)
		}
		if se.Offset != c.offset {
			t.Fatalf("Parse(%q) offset got %d want %d", c.in, se.Offset, c.offset)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	parsed, err := Parse("")
	if err != nil || len(parsed) != 0 {
		t.Fatalf("Parse(\"\") got %v err=%v", parsed, err)
	}
}
