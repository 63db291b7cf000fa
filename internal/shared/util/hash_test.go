package util

import "testing"

func TestHashStorageKey(t *testing.T) {
	id := "req-12345"
	got := HashStorageKey(id)
	if got != HashStorageKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestSanitizeFileName(t *testing.T) {
	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatalf("expected empty-name rejection")
	}
	got, err := SanitizeFileName("my contract/v1.pdf")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "my_contract_v1.pdf" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}
