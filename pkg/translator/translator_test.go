package translator_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskmanager/pkg/translator"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localize(t *testing.T, lang, id string) string {
	t.Helper()
	localizer := i18n.NewLocalizer(translator.Translator, lang)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	require.NoError(t, err)
	return msg
}

func TestInitTranslator_LoadsEmbeddedMessages(t *testing.T) {
	translator.InitTranslator(translator.Config{
		SupportedLanguages: []string{translator.LanguageEn, translator.LanguageRu},
	})

	assert.Equal(t, "Task not found.", localize(t, translator.LanguageEn, "taskNotFound"))
	assert.Equal(t, "Задача не найдена.", localize(t, translator.LanguageRu, "taskNotFound"))
}

func TestInitTranslator_LoadsFolderOverride(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`hello = "Hello english"` + "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))

	translator.InitTranslator(translator.Config{TranslationFolder: dir})

	assert.Equal(t, "Hello english", localize(t, translator.LanguageEn, "hello"))
}

func TestInitTranslator_SkipsUnsupportedLanguages(t *testing.T) {
	translator.InitTranslator(translator.Config{
		SupportedLanguages: []string{translator.LanguageEn},
	})

	assert.Equal(t, "Task not found.", localize(t, translator.LanguageRu, "taskNotFound"))
}

func TestInitTranslator_FolderFilteredBySupportedLanguages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), []byte(`hello = "Hello"`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.toml"), []byte(`hello = "Bonjour"`+"\n"), 0o644))

	translator.InitTranslator(translator.Config{
		TranslationFolder:  dir,
		SupportedLanguages: []string{translator.LanguageEn},
	})

	assert.Equal(t, "Hello", localize(t, "fr", "hello"))
}

func TestInitTranslator_InvalidFolder(t *testing.T) {
	translator.InitTranslator(translator.Config{
		TranslationFolder: "/path/does/not/exist",
	})
	assert.NotNil(t, translator.Translator)
}

func TestSupported(t *testing.T) {
	langs := []string{translator.LanguageEn, translator.LanguageRu}
	assert.True(t, translator.Supported("ru", langs))
	assert.False(t, translator.Supported("fr", langs))
}
