package middleware

import "github.com/gin-gonic/gin"

// callerAddressKey is the key used to store the authenticated caller's ledger address.
const callerAddressKey = contextKey("callerAddress")

// GetCallerAddressFromContext retrieves the authenticated caller address from the Gin context.
// It returns the address and a boolean indicating if it was found.
func GetCallerAddressFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(callerAddressKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(callerAddressKey).(string); ok {
			return v, true
		}
		return "", false
	}

	address, ok := val.(string)
	if !ok {
		return "", false
	}
	return address, true
}
