package brcode

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

const testKey = "984c97f3-49bc-4ac1-9f95-b62c2d1c2ead"

func TestEncode_EndToEnd(t *testing.T) {
	got, err := Encode(testKey, Profile{Name: "DELHEY", City: "SAO PAULO"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "00020126580014BR.GOV.BCB.PIX0136" + testKey +
		"5204000053039865802BR5906DELHEY6009SAO PAULO62070503***63041ABD"
	if got != want {
		t.Fatalf("Encode got\n%s\nwant\n%s", got, want)
	}
	if !strings.HasPrefix(got, "000201260") {
		t.Fatalf("payload must start with format indicator and merchant account: %s", got)
	}
	if !strings.Contains(got, "5204000053039865802BR5906DELHEY6009SAO PAULO") {
		t.Fatalf("fixed fields missing: %s", got)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate(Encode()) = %v", err)
	}
}

func TestEncode_UpperCasesNameAndCity(t *testing.T) {
	got, err := Encode(testKey, Profile{Name: "Patinha Essencial", City: "Sao Paulo"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "00020126580014BR.GOV.BCB.PIX0136" + testKey +
		"5204000053039865802BR5917PATINHA ESSENCIAL6009SAO PAULO62070503***630406C3"
	if got != want {
		t.Fatalf("Encode got\n%s\nwant\n%s", got, want)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	p := Profile{Name: "Associacao Protetora", City: "Curitiba"}
	first, err := Encode(testKey, p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Encode(testKey, p)
		if err != nil {
			t.Fatalf("Encode run %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("run %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestEncode_FieldOrder(t *testing.T) {
	wantTags := []string{"00", "26", "52", "53", "58", "59", "60", "62", "63"}
	profiles := []Profile{
		{Name: "DELHEY", City: "SAO PAULO"},
		{Name: "", City: ""},
		{Name: strings.Repeat("z", 40), City: strings.Repeat("y", 40)},
	}
	keys := []string{testKey, "+5511999990000", "doacoes@example.org"}
	for _, key := range keys {
		for _, p := range profiles {
			payload, err := Encode(key, p)
			if err != nil {
				t.Fatalf("Encode(%q, %+v): %v", key, p, err)
			}
			parsed, err := Parse(payload)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(parsed) != len(wantTags) {
				t.Fatalf("got %d fields want %d: %s", len(parsed), len(wantTags), payload)
			}
			for i, f := range parsed {
				if f.Tag != wantTags[i] {
					t.Fatalf("field %d tag %s want %s (%s)", i, f.Tag, wantTags[i], payload)
				}
			}
			acct := parsed[1]
			if gui, ok := acct.Child(TagGUI); !ok || gui.Value != GUI {
				t.Fatalf("merchant account GUI got %+v", gui)
			}
			if k, ok := acct.Child(TagPixKey); !ok || k.Value != key {
				t.Fatalf("merchant account key got %q want %q", k.Value, key)
			}
		}
	}
}

func TestEncode_NameTruncation(t *testing.T) {
	exact := strings.Repeat("a", MaxNameLen)
	long := exact + "b"

	for _, c := range []struct {
		name  string
		in    string
		value string
	}{
		{"exactly 25 bytes kept", exact, strings.ToUpper(exact)},
		{"26 bytes cut to 25", long, strings.ToUpper(long)[:MaxNameLen]},
		{"mixed case long", "Instituto de Amparo aos Animais de Rua", "INSTITUTO DE AMPARO AOS A"},
	} {
		t.Run(c.name, func(t *testing.T) {
			payload, err := Encode(testKey, Profile{Name: c.in, City: "X"})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			name := mustLookup(t, payload, TagMerchantName)
			if name.Value != c.value {
				t.Fatalf("name got %q want %q", name.Value, c.value)
			}
			declared := "59" + twoDigits(len(c.value))
			if !strings.Contains(payload, declared+c.value) {
				t.Fatalf("payload lacks %q: %s", declared+c.value, payload)
			}
		})
	}
}

func TestEncode_LongNameDeclaresLength25(t *testing.T) {
	payload, err := Encode(testKey, Profile{Name: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", City: "RIO DE JANEIRO CITY"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(payload, "5925ABCDEFGHIJKLMNOPQRSTUVWXY6015RIO DE JANEIRO 62") {
		t.Fatalf("unexpected name/city rendering: %s", payload)
	}
	if !strings.HasSuffix(payload, "630479C8") {
		t.Fatalf("unexpected checksum: %s", payload)
	}
}

func TestEncode_CityTruncation(t *testing.T) {
	payload, err := Encode(testKey, Profile{Name: "X", City: "Sao Jose dos Campos"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	city := mustLookup(t, payload, TagMerchantCity)
	if city.Value != "SAO JOSE DOS CA" {
		t.Fatalf("city got %q", city.Value)
	}
}

func TestEncode_TruncationKeepsUTF8(t *testing.T) {
	// 13 two-byte runes: 26 bytes, one past the limit.
	name := strings.Repeat("Ç", 13)
	payload, err := Encode(testKey, Profile{Name: name, City: "X"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f := mustLookup(t, payload, TagMerchantName)
	if len(f.Value) != 24 || !utf8.ValidString(f.Value) {
		t.Fatalf("name got %q (%d bytes)", f.Value, len(f.Value))
	}
	if !IsValid(payload) {
		t.Fatalf("payload with multibyte name must validate")
	}
}

func TestEncode_KeyTooLong(t *testing.T) {
	// GUI sub-field (18) + key header (4) + 77 key bytes = 99.
	if _, err := Encode(strings.Repeat("k", 77), Profile{Name: "X", City: "Y"}); err != nil {
		t.Fatalf("77 byte key must fit: %v", err)
	}

	_, err := Encode(strings.Repeat("k", 78), Profile{Name: "X", City: "Y"})
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("78 byte key: expected ErrFieldTooLong, got %v", err)
	}
	var fe *FieldTooLongError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldTooLongError, got %T", err)
	}
	if fe.Tag != TagMerchantAccount || fe.Length != 100 {
		t.Fatalf("got tag=%s len=%d", fe.Tag, fe.Length)
	}

	_, err = Encode(strings.Repeat("k", 120), Profile{Name: "X", City: "Y"})
	if !errors.As(err, &fe) || fe.Tag != TagPixKey {
		t.Fatalf("120 byte key: expected key field error, got %v", err)
	}
}

func TestRender_Template(t *testing.T) {
	got, err := Render(Template("62", Field{Tag: "05", Value: "***"}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "62070503***" {
		t.Fatalf("got %s", got)
	}
	if _, err := Render(Field{Tag: "6", Value: "x"}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("one digit tag: expected ErrMalformed, got %v", err)
	}
}

func TestSeal_CoversChecksumPrefix(t *testing.T) {
	body := "000201"
	sealed := Seal(body)
	if !strings.HasPrefix(sealed, body+"6304") || len(sealed) != len(body)+8 {
		t.Fatalf("sealed got %s", sealed)
	}
	if !IsValid(sealed) {
		t.Fatalf("sealed body must validate: %s", sealed)
	}
}

func mustLookup(t *testing.T, payload, tag string) Field {
	t.Helper()
	parsed, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, ok := parsed.Lookup(tag)
	if !ok {
		t.Fatalf("tag %s missing from %s", tag, payload)
	}
	return f
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
