// Package request holds small helpers shared by gin handlers for reading path and query input.
package request

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gardenhub/backend/pkg/response"
)

// PathID parses the named path parameter as a UUID. On failure it writes a 400 and returns false.
func PathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+what+" id")
		return uuid.Nil, false
	}
	return id, true
}

// QueryID parses an optional UUID query parameter. A present but malformed value writes a
// 400 and returns false.
func QueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// Page reads limit and offset query parameters. Bad or missing values read as zero.
func Page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
