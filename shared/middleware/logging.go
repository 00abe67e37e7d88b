package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware writes one line per request once the handler chain finishes.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		customerID, _ := GetCustomerID(c)
		if customerID == "" {
			customerID = "-"
		}
		log.Printf("%s %s %d %s ip=%s customer=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start).Round(time.Microsecond),
			c.ClientIP(), customerID)
		for _, e := range c.Errors {
			log.Printf("  error: %v", e.Err)
		}
	}
}
