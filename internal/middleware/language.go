package middleware

import (
	"taskmanager/pkg/translator"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const LangKey = "lang"

// LanguageMiddleware picks the best supported language from the
// Accept-Language header. Unmatched or malformed headers get defaultLang.
func LanguageMiddleware(defaultLang string, supported []string) gin.HandlerFunc {
	tags := []language.Tag{language.Make(defaultLang)}
	for _, s := range supported {
		if s != defaultLang {
			tags = append(tags, language.Make(s))
		}
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		lang := defaultLang
		if header := c.GetHeader("Accept-Language"); header != "" {
			if prefs, _, err := language.ParseAcceptLanguage(header); err == nil && len(prefs) > 0 {
				if _, idx, conf := matcher.Match(prefs...); conf != language.No {
					base, _ := tags[idx].Base()
					lang = base.String()
				}
			}
		}
		c.Set(LangKey, lang)
		c.Next()
	}
}

func GetLang(c *gin.Context) string {
	if lang, exists := c.Get(LangKey); exists {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	return translator.LanguageEn
}
