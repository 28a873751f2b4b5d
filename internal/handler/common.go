package handler

import (
	"log"
	"net/http"

	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service errors onto the API envelope. Typed errors carry
// their own status and a safe message; anything else is logged and reported
// as a generic 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	if appErr := apperror.FromError(err); appErr != nil {
		c.JSON(appErr.Status, response.Error(appErr.Message))
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, response.Error("internal server error"))
}

// pathUUID parses a uuid path parameter, responding 400 on failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
