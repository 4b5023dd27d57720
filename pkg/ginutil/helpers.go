package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

// QueryUint64 extracts an optional unsigned id from query parameters
func QueryUint64(c *gin.Context, key string) *uint64 {
	value, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil || value == 0 {
		return nil
	}
	return &value
}

// QueryFloat extracts an optional float from query parameters
func QueryFloat(c *gin.Context, key string) *float64 {
	value, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParamUint64 extracts a uint64 id from path parameters
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	return strconv.ParseUint(c.Param(key), 10, 64)
}
