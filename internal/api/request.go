package api

import (
	"context" // Context for cache calls
	"errors"  // Error construction
	"math"    // Float range checks
	"strconv" // String conversion
	"strings" // String manipulation

	"artspace/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Messages shown to the browser, kept in the storefront's language
const (
	MsgDuplicateEmail = "อีเมลนี้ถูกใช้แล้ว"              // Email already registered
	MsgSoldNoEdit     = "สินค้าขายแล้ว ไม่สามารถแก้ไขได้" // Sold artworks cannot be edited
	MsgAlreadySold    = "artwork already sold"
)

// FlexInt accepts a JSON number or a numeric string, as browsers send form values as strings
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	quoted := false
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		quoted = true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if !quoted {
		// Fractional JSON numbers are truncated. float64(MaxInt64) rounds up to 2^63,
		// so the upper bound is exclusive; MinInt64 is exactly representable.
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) &&
			v < math.MaxInt64 && v >= math.MinInt64 {
			*f = FlexInt(int64(v))
			return nil
		}
	}
	return errors.New("not an integer: " + string(b))
}

// ID returns the value as a positive record id
func (f FlexInt) ID() (uint, bool) {
	if f <= 0 {
		return 0, false
	}
	return uint(f), true
}

// fail writes the {success:false} envelope, with a message when one is given
func fail(c *gin.Context, status int, message string) {
	body := gin.H{"success": false}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// invalidate drops cached listings after a mutation
func invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if err := utils.DeleteCache(ctx, rdb, keys...); err != nil {
		logrus.WithFields(logrus.Fields{
			"keys":  keys,        // Cache keys
			"error": err.Error(), // Error message
		}).Warn("Cache invalidation failed")
	}
}
