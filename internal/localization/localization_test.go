package localization_test

import (
	"estatehub/backend/internal/localization"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabel_Embedded(t *testing.T) {
	l, err := localization.NewLocalizer()
	require.NoError(t, err)

	assert.Equal(t, "Отклонено", l.StatusLabel("ru", "complaint", "REJECTED"))
	assert.Equal(t, "Rejected", l.StatusLabel("en", "complaint", "REJECTED"))
	assert.Equal(t, "Подтверждено", l.StatusLabel("", "reservation", "CONFIRMED"))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"ru.json":    {Data: []byte(`{"greet":"Привет","only_ru":"только"}`)},
		"en.json":    {Data: []byte(`{"greet":"Hello"}`)},
		"README.txt": {Data: []byte(`ignored`)},
	}
	l, err := localization.NewLocalizerFS(fsys)
	require.NoError(t, err)

	assert.Equal(t, "Hello", l.GetString("en", "greet"))
	assert.Equal(t, "только", l.GetString("en", "only_ru"), "falls back to the default language")
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"), "falls back to the key")
}

func TestNewLocalizerFS_BadJSON(t *testing.T) {
	_, err := localization.NewLocalizerFS(fstest.MapFS{"ru.json": {Data: []byte(`{`)}})
	assert.Error(t, err)
}

func TestLanguage(t *testing.T) {
	l, err := localization.NewLocalizer()
	require.NoError(t, err)

	assert.Equal(t, "en", l.Language("en-US,en;q=0.9"))
	assert.Equal(t, "ru", l.Language("de-DE,de;q=0.9"))
	assert.Equal(t, "ru", l.Language(""))
}

func TestFormat(t *testing.T) {
	l, err := localization.NewLocalizer()
	require.NoError(t, err)

	got := l.Format("en", "notify.complaint.status", "Sunny flat", "Rejected")

	assert.Equal(t, `Your complaint about "Sunny flat" is now: Rejected.`, got)
}
