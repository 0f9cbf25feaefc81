package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName_Empty(t *testing.T) {
	assert.Equal(t, "", Name(""))
	assert.Equal(t, "", Name("   "))
}

func TestName_UppercaseTrim(t *testing.T) {
	assert.Equal(t, "ACME WIDGETS", Name("  acme widgets  "))
}

func TestName_StripsSuffix(t *testing.T) {
	assert.Equal(t, "ACME", Name("Acme Corp."))
	assert.Equal(t, "ACME", Name("Acme Corporation"))
	assert.Equal(t, "ACME", Name("Acme Incorporated"))
	assert.Equal(t, "ACME", Name("Acme Ltd."))
	assert.Equal(t, "ACME", Name("Acme GmbH"))
}

func TestName_Ampersand(t *testing.T) {
	assert.Equal(t, "AT AND T", Name("AT&T Inc"))
}

func TestName_ApostropheAndComma(t *testing.T) {
	assert.Equal(t, "OBRIEN AND SONS", Name("O'Brien & Sons, LLC"))
}

func TestName_DashToSpace(t *testing.T) {
	assert.Equal(t, "HEWLETT PACKARD", Name("Hewlett-Packard Company"))
}

func TestName_AbbreviationExpansion(t *testing.T) {
	assert.Equal(t, "ACME TECHNOLOGY", Name("ACME TECH"))
	assert.Equal(t, "ACME INTERNATIONAL", Name("Acme Intl"))
	assert.Equal(t, "ACME MANUFACTURING", Name("ACME MFG CO."))
	assert.Equal(t, "NATIONAL SYSTEMS", Name("Natl Sys Inc"))
}

func TestName_AbbreviatedSuffixRecognized(t *testing.T) {
	// INC expands to INCORPORATED before the suffix pass, so the bare
	// abbreviation is stripped just like the full form.
	assert.Equal(t, Name("Acme Incorporated"), Name("Acme Inc"))
}

func TestName_WholeWordOnly(t *testing.T) {
	// CO inside a word must survive; only whole tokens are suffixes.
	assert.Equal(t, "COBALT MINING", Name("Cobalt Mining"))
	assert.Equal(t, "INCANDESCENT", Name("Incandescent"))
}

func TestName_SuffixOnlyInput(t *testing.T) {
	assert.Equal(t, "", Name("Corp."))
	assert.Equal(t, "", Name("Company Limited"))
}

func TestName_AccentFolding(t *testing.T) {
	assert.Equal(t, "SOCIETE GENERALE", Name("Société Générale"))
}

func TestName_PunctuationToSpace(t *testing.T) {
	assert.Equal(t, "ACME 3M HOLDINGS", Name("Acme/3M (Holdings)"))
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Acme Corp.", "AT&T Inc", "O'Brien & Sons, LLC",
		"Hewlett-Packard Company", "Nestlé S.A.", "3M", "",
		"International Business Machines Corporation",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "idempotence for %q", in)
	}
}

func TestName_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "ACME TECHNOLOGY", Name("ACME TECH"))
	}
}

func TestNewWithRules_ExtraAbbreviation(t *testing.T) {
	n, err := NewWithRules(Rules{
		Abbreviations: []Rule{{Pattern: `\bMGMT\b`, Replacement: "MANAGEMENT"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME MANAGEMENT", n.Normalize("Acme Mgmt"))
}

func TestNewWithRules_ExtraSuffix(t *testing.T) {
	n, err := NewWithRules(Rules{Suffixes: []string{`\bBV\b`}})
	require.NoError(t, err)
	assert.Equal(t, "PHILIPS", n.Normalize("Philips BV"))
}

func TestNewWithRules_BadPattern(t *testing.T) {
	_, err := NewWithRules(Rules{Suffixes: []string{`(`}})
	assert.Error(t, err)
}

func TestLoadRules_EmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Empty(t, rules.Abbreviations)
	assert.Empty(t, rules.Suffixes)
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "abbreviations:\n  - pattern: '\\bHLDGS\\b'\n    replacement: HOLDINGS\nsuffixes:\n  - '\\bKG\\b'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules.Abbreviations, 1)
	assert.Equal(t, "HOLDINGS", rules.Abbreviations[0].Replacement)
	require.Len(t, rules.Suffixes, 1)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestFromConfig_NoFile(t *testing.T) {
	n, err := FromConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ACME", n.Normalize("Acme Corp."))
}
