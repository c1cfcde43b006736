package logging

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeCommandRedactsSensitiveTokens(t *testing.T) {
	input := `TOKEN=abc123 deploy --token=def456 --api-key ghi789 -H "Authorization: Bearer xyz999" Bearer bar111`
	out := SanitizeCommand(input)
	for _, secret := range []string{"abc123", "def456", "ghi789", "xyz999", "bar111"} {
		if strings.Contains(out, secret) {
			t.Fatalf("expected %q to be redacted in %q", secret, out)
		}
	}
	if !strings.Contains(out, "deploy") {
		t.Fatalf("expected command to retain deploy, got %q", out)
	}
}

func TestSanitizeTokens(t *testing.T) {
	in := []string{"login", "--password", "hunter2", "--user", "bob", "--token=abc", "API_KEY=zzz"}
	want := []string{"login", "--password", "<redacted>", "--user", "bob", "--token=<redacted>", "API_KEY=<redacted>"}
	got := SanitizeTokens(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SanitizeTokens (-want +got):\n%s", diff)
	}
	if in[2] != "hunter2" {
		t.Fatalf("input was modified")
	}
}

func TestRedactValues(t *testing.T) {
	got := RedactValues(map[string]any{"port": 8080, "Password": "hunter2"})
	want := map[string]any{"port": 8080, "Password": "<redacted>"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RedactValues (-want +got):\n%s", diff)
	}
}
