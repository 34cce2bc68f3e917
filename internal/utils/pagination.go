package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 25
	maxLimit     = 100
)

// GetPaginationParams extracts limit and offset query parameters with
// sane bounds applied.
func GetPaginationParams(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	offset = 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
