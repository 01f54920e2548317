package personnel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPersonnelIntensive(t *testing.T) {
	r := NewResolver([]string{" Handarbeit ", "sonder"}, map[string]string{"HA": "handarbeit", "xx": "unknown"})
	cases := []struct {
		product string
		want    bool
	}{
		{"Handarbeit Premium", true},
		{"Sonderformat 12", true},
		{"Typ HA-3", true},
		{"Typ XX-3", false},
		{"Standard", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, r.IsPersonnelIntensive(c.product), c.product)
	}
}

func TestEmptyResolver(t *testing.T) {
	var r *Resolver
	assert.True(t, r.Empty())
	assert.False(t, r.IsPersonnelIntensive("handarbeit"))
	assert.True(t, NewResolver(nil, nil).Empty())
}

func TestFromConfigMergesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personnel.yaml")
	doc := "terms:\n  - manuell\naliases:\n  man.: manuell\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	r, err := FromConfig(Config{Terms: []string{"sonder"}, File: path})
	require.NoError(t, err)
	assert.True(t, r.IsPersonnelIntensive("Sonder"))
	assert.True(t, r.IsPersonnelIntensive("Produkt man. 4"))

	_, err = FromConfig(Config{File: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Terms: []string{"a"}}.Validate())
	assert.Error(t, Config{Terms: []string{" "}}.Validate())
	assert.Error(t, Config{Aliases: map[string]string{"a": ""}}.Validate())
}
