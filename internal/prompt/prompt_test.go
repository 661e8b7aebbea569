package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultRender(t *testing.T) {
	out, err := Default().Render(Fields{
		Material:        "Lead",
		TreatmentCharge: "320",
		DeliveryPoint:   "Antwerp",
	})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	for _, want := range []string{
		"- Material: Lead",
		"- Treatment Charge: 320",
		"- Refining Charge: Not set",
		"- Delivery Point: Antwerp",
		"TC: [specific suggestion with reasoning]",
		"RC: [specific suggestion with reasoning]",
		"under 50 words",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q:\n%s", want, out)
		}
	}
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	tpl, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if tpl != Default() {
		t.Error("expected the default template")
	}
}

func TestLoadCustom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	if err := os.WriteFile(path, []byte("Price {{.Material}} at {{.DeliveryPoint}}"), 0o600); err != nil {
		t.Fatal(err)
	}

	tpl, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	out, err := tpl.Render(Fields{Material: "Zinc", DeliveryPoint: "Rotterdam"})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if out != "Price Zinc at Rotterdam" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLoadWithFallback(t *testing.T) {
	tpl := LoadWithFallback(filepath.Join(t.TempDir(), "missing.tmpl"), zerolog.Nop())
	if tpl != Default() {
		t.Error("expected fallback to the default template")
	}
}

func TestParseRejectsBadTemplates(t *testing.T) {
	if _, err := Parse("no fields here"); err == nil {
		t.Error("expected error for template without fields")
	}
	if _, err := Parse("{{.Material"); err == nil {
		t.Error("expected error for unterminated action")
	}

	tpl, err := Parse("{{.Unknown}}")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := tpl.Render(Fields{}); err == nil {
		t.Error("expected render error for unknown field")
	}
}
