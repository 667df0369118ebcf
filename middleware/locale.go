package middleware

import (
	"github.com/gin-gonic/gin"

	"library-api/i18n"
)

const (
	keyCatalog    = "i18n.catalog"
	keyTranslator = "i18n.translator"
)

// Locale makes cat available to Translator for the rest of the chain.
func Locale(cat *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyCatalog, cat)
		c.Next()
	}
}

// Translator returns the request's translator. The locale comes from the
// locale query parameter, then the signed-in user's profile language, then
// Accept-Language. The result is kept for the rest of the request; the auth
// middleware drops it when it learns the profile language.
func Translator(c *gin.Context) *i18n.Translator {
	if v, ok := c.Get(keyTranslator); ok {
		if tr, _ := v.(*i18n.Translator); tr != nil {
			return tr
		}
	}
	v, ok := c.Get(keyCatalog)
	if !ok {
		return nil
	}
	tr := v.(*i18n.Catalog).Translator(
		c.Query("locale"),
		c.GetString(keyLanguage),
		c.GetHeader("Accept-Language"),
	)
	c.Set(keyTranslator, tr)
	return tr
}

func resetTranslator(c *gin.Context) {
	c.Set(keyTranslator, (*i18n.Translator)(nil))
}
