package cloud

import "testing"

func TestAliasTable_ResolveDevBoard(t *testing.T) {
	aliases := DefaultAliases()

	if got := aliases.Resolve("esp32-devkit-fp"); got != "companion-v1-prod" {
		t.Errorf("Resolve(dev board) = %q, want %q", got, "companion-v1-prod")
	}
}

func TestAliasTable_PassThrough(t *testing.T) {
	aliases := DefaultAliases()

	if got := aliases.Resolve("companion-v1-8f2a"); got != "companion-v1-8f2a" {
		t.Errorf("Resolve(unmapped) = %q, want pass-through", got)
	}
	if got := aliases.Resolve(""); got != "" {
		t.Errorf("Resolve(empty) = %q, want empty", got)
	}
}

func TestAliasTable_Merge(t *testing.T) {
	aliases := DefaultAliases()
	aliases.Merge(map[string]string{
		"esp32-devkit-fp": "companion-v2-prod",
		"rpi-zero-fp":     "companion-mini-prod",
	})

	if got := aliases.Resolve("esp32-devkit-fp"); got != "companion-v2-prod" {
		t.Errorf("merged entry not overwritten: got %q", got)
	}
	if got := aliases.Resolve("rpi-zero-fp"); got != "companion-mini-prod" {
		t.Errorf("new entry missing: got %q", got)
	}
}
