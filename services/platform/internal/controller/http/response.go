package http

import (
	"net/http"
	"strconv"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// respondError maps err to its status code. Internal errors are logged and
// never echoed to the client.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)
	if status == http.StatusInternalServerError {
		log.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: apperror.Message(err), Kind: string(kind)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(apperror.ValidationError)})
}

func viewerID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
