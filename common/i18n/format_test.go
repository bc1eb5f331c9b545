package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottm-wiki/wiki/common/i18n"
)

func TestFormatNumber_GroupsByLocale(t *testing.T) {
	assert.Equal(t, "1,234,567", i18n.FormatNumber(1234567, "en"))
}

func TestFormatNumber_FallsBackToEnglishOnUnknownTag(t *testing.T) {
	assert.Equal(t, "1,234", i18n.FormatNumber(1234, "not-a-real-tag"))
}

func TestFormatDate_UsesExplicitLayout(t *testing.T) {
	out, err := i18n.FormatDate("2026-03-05", "en", "2006/01/02")
	require.NoError(t, err)
	assert.Equal(t, "2026/03/05", out)
}

func TestFormatDate_DefaultsByLanguage(t *testing.T) {
	out, err := i18n.FormatDate("2026-03-05", "en", "")
	require.NoError(t, err)
	assert.Equal(t, "March 5, 2026", out)
}

func TestFormatDate_RejectsUnparsableInput(t *testing.T) {
	_, err := i18n.FormatDate("not-a-date", "en", "")
	assert.Error(t, err)
}
