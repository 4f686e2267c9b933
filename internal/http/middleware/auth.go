package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// retrieves the *model.Identity from Gin context (after JWTMiddleware has run).
func GetCurrentIdentity(c *gin.Context) (*model.Identity, bool) {
	v, exists := c.Get(currentIdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*model.Identity)
	return identity, ok
}
