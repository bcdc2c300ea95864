package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/salon-core/internal/apperror"
)

func pathID(c *gin.Context, log logrus.FieldLogger) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, log, apperror.Validation("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func limitOffset(c *gin.Context) (limit, offset int, err error) {
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, apperror.Validation("limit must be an integer")
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			return 0, 0, apperror.Validation("offset must be an integer")
		}
	}
	return limit, offset, nil
}
