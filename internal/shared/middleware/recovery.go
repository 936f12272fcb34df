package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"shopcart-backend/internal/shared/response"
)

// Recovery turns handler panics into a 500 response instead of a
// dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("recovered from panic")

				response.InternalServerError(c, "Something went wrong")
				c.Abort()
			}
		}()

		c.Next()
	}
}
