package archiveid

import (
	"strings"
	"testing"
)

func TestNewIDs(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"view", NewView, "view_"},
		{"handle", NewHandle, "dl_"},
		{"bundle", NewBundle, "bnd_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Fatalf("expected prefix %s, got %s", tt.prefix, id)
			}
			if !IsValid(id) {
				t.Fatalf("expected %s to be valid", id)
			}
			if id == tt.gen() {
				t.Fatalf("expected unique ids")
			}
		})
	}
}

func TestIsValid_Rejects(t *testing.T) {
	for _, value := range []string{"", "view_", "jan_01hx", "dl_not-a-ulid"} {
		if IsValid(value) {
			t.Errorf("expected %q to be invalid", value)
		}
	}
}
