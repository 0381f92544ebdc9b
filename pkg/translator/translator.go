package translator

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed translation/*.toml
var embedded embed.FS

var Translator *i18n.Bundle

type Config struct {
	// TranslationFolder overrides the embedded message files when set.
	TranslationFolder string
	// SupportedLanguages limits which <lang>.toml files are loaded. Empty
	// loads every file.
	SupportedLanguages []string
}

const (
	LanguageEn = "en"
	LanguageRu = "ru"
)

func InitTranslator(cfg Config) {
	Translator = i18n.NewBundle(language.English)
	Translator.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	var (
		fsys fs.FS = embedded
		dir        = "translation"
	)
	if cfg.TranslationFolder != "" {
		fsys = os.DirFS(cfg.TranslationFolder)
		dir = "."
	}

	lstFiles, err := fs.ReadDir(fsys, dir)
	if err != nil {
		zap.L().Error("failed to list translation folder", zap.String("folder", cfg.TranslationFolder), zap.Error(err))
		return
	}

	for _, f := range lstFiles {
		if f.IsDir() || path.Ext(f.Name()) != ".toml" {
			continue
		}
		lang := strings.TrimSuffix(f.Name(), ".toml")
		if len(cfg.SupportedLanguages) > 0 && !Supported(lang, cfg.SupportedLanguages) {
			zap.L().Debug("skipping unsupported translation file", zap.String("file", f.Name()))
			continue
		}
		if _, err := Translator.LoadMessageFileFS(fsys, path.Join(dir, f.Name())); err != nil {
			zap.L().Warn("failed to load translation file", zap.String("file", f.Name()), zap.Error(err))
		}
	}
}

// Supported reports whether lang is one of the configured languages.
func Supported(lang string, supported []string) bool {
	for _, s := range supported {
		if s == lang {
			return true
		}
	}
	return false
}
