package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
	"github.com/Leganyst/salon-core/internal/pagination"
)

// JSONResponse is the envelope of every API reply.
type JSONResponse struct {
	Status   bool             `json:"status"`
	Message  string           `json:"message"`
	Data     any              `json:"data"`
	Metadata *pagination.Meta `json:"metadata,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data any) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondPage writes a list result with its pagination metadata.
func RespondPage[T any](c *gin.Context, message string, page pagination.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	meta := page.Meta
	c.JSON(http.StatusOK, JSONResponse{
		Status:   true,
		Message:  message,
		Data:     items,
		Metadata: &meta,
	})
}

// RespondError maps an error to its status code. Internal failures are
// logged with the request id and answered with a generic message.
func RespondError(c *gin.Context, log logrus.FieldLogger, err error) {
	code := apperror.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": RequestIDFrom(c),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(code, JSONResponse{
		Status:  false,
		Message: apperror.PublicMessage(err),
	})
}
