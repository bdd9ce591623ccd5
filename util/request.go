package util

import (
	"github.com/gin-gonic/gin"
)

const scopesKey = "scopes"

// SetScope sets a request scoped value on the gin context.
func SetScope(c *gin.Context, key string, value interface{}) {
	scopeValue, exists := c.Get(scopesKey)
	if !exists {
		c.Set(scopesKey, map[string]interface{}{key: value})
		return
	}

	scopeValue.(map[string]interface{})[key] = value
}

func GetScopeByKey(c *gin.Context, key string) interface{} {
	scopeValue, exists := c.Get(scopesKey)
	if exists {
		return scopeValue.(map[string]interface{})[key]
	}
	return nil
}

func GetScopeByKeyAsString(c *gin.Context, key string) string {
	iface := GetScopeByKey(c, key)
	if iface == nil {
		return ""
	}
	return iface.(string)
}
