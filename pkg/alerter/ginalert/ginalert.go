// Package ginalert reports panics in gin handlers through an alerter.
package ginalert

import (
	"github.com/gin-gonic/gin"

	"github.com/mostafa-yasen/telegram-exception-alerts/pkg/alerter"
)

// Recovery alerts on a panic escaping the rest of the chain and re-panics it.
// Register it after gin.Recovery() so the panic still ends as a 500:
//
//	r.Use(gin.Recovery(), ginalert.Recovery(a))
//
// The alert names the route's final handler.
func Recovery(a *alerter.Alerter) gin.HandlerFunc {
	if a == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		id := alerter.ParseIdentity(c.HandlerName())
		defer a.Recover(c.Request.Context(), id)
		c.Next()
	}
}
