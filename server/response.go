package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/convpipe/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err with the status of its AppError, or as a 500.
func RespondWithError(c *gin.Context, err error) {
	c.JSON(errors.Response(err))
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
