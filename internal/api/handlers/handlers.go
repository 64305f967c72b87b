// Package handlers exposes the core operations over REST. Handlers
// translate transport concerns (params, status codes) and leave all
// domain rules to the services.
package handlers

import (
	"strconv"

	"social-service/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// fail writes the error with the status its taxonomy kind maps to.
func fail(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
