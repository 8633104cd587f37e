package cloud

// AliasTable maps known hardware device names to the production device names
// the IoT cloud expects. Seeded from configuration so new mappings can be
// added without touching reconciliation logic.
type AliasTable map[string]string

// DefaultAliases returns the built-in substitution table. The single entry
// remaps the development board's factory name to its production counterpart.
func DefaultAliases() AliasTable {
	return AliasTable{
		"esp32-devkit-fp": "companion-v1-prod",
	}
}

// Resolve returns the device name to use for cloud probes. Unmapped names
// pass through unchanged, including the empty string.
func (t AliasTable) Resolve(deviceName string) string {
	if mapped, ok := t[deviceName]; ok {
		return mapped
	}
	return deviceName
}

// Merge overlays entries from other onto the table, overwriting duplicates.
func (t AliasTable) Merge(other map[string]string) {
	for k, v := range other {
		t[k] = v
	}
}
