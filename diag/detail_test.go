package diag

import "testing"

func TestDetailKeyConstants(t *testing.T) {
	keys := []struct {
		name  string
		value string
	}{
		{"DetailKeyExpected", DetailKeyExpected},
		{"DetailKeyGot", DetailKeyGot},
		{"DetailKeyName", DetailKeyName},
		{"DetailKeyReason", DetailKeyReason},
		{"DetailKeyPath", DetailKeyPath},
		{"DetailKeyResolvedPath", DetailKeyResolvedPath},
		{"DetailKeyCycle", DetailKeyCycle},
		{"DetailKeyExpectedArity", DetailKeyExpectedArity},
		{"DetailKeyGotArity", DetailKeyGotArity},
		{"DetailKeyFirstLine", DetailKeyFirstLine},
		{"DetailKeyContext", DetailKeyContext},
	}

	for _, k := range keys {
		t.Run(k.name, func(t *testing.T) {
			if k.value == "" {
				t.Errorf("%s is empty", k.name)
			}
			for _, r := range k.value {
				if r >= 'A' && r <= 'Z' {
					t.Errorf("%s contains uppercase: %q", k.name, k.value)
					break
				}
			}
		})
	}
}

func TestDetailKeyConstants_Uniqueness(t *testing.T) {
	keys := []string{
		DetailKeyExpected,
		DetailKeyGot,
		DetailKeyName,
		DetailKeyReason,
		DetailKeyPath,
		DetailKeyResolvedPath,
		DetailKeyCycle,
		DetailKeyExpectedArity,
		DetailKeyGotArity,
		DetailKeyFirstLine,
		DetailKeyContext,
	}

	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key: %q", k)
		}
		seen[k] = true
	}
}

func TestExpectedGot(t *testing.T) {
	details := ExpectedGot("';'", "'begin'")

	if len(details) != 2 {
		t.Fatalf("ExpectedGot returned %d details; want 2", len(details))
	}
	if details[0].Key != DetailKeyExpected || details[0].Value != "';'" {
		t.Errorf("first detail = %+v; want {%q %q}", details[0], DetailKeyExpected, "';'")
	}
	if details[1].Key != DetailKeyGot || details[1].Value != "'begin'" {
		t.Errorf("second detail = %+v; want {%q %q}", details[1], DetailKeyGot, "'begin'")
	}
}

func TestArity(t *testing.T) {
	details := Arity(2, 3)

	if len(details) != 2 {
		t.Fatalf("Arity returned %d details; want 2", len(details))
	}
	if details[0].Key != DetailKeyExpectedArity || details[0].Value != "2" {
		t.Errorf("first detail = %+v; want {%q %q}", details[0], DetailKeyExpectedArity, "2")
	}
	if details[1].Key != DetailKeyGotArity || details[1].Value != "3" {
		t.Errorf("second detail = %+v; want {%q %q}", details[1], DetailKeyGotArity, "3")
	}
}

func TestDetail_ZeroValue(t *testing.T) {
	var d Detail
	if d.Key != "" {
		t.Errorf("zero Detail.Key = %q; want empty", d.Key)
	}
	if d.Value != "" {
		t.Errorf("zero Detail.Value = %q; want empty", d.Value)
	}
}
