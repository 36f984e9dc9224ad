package handlers

import (
	"strconv"
	"strings"
	"time"

	"billledger/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// pathUUID parses the named path parameter
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return uuid.Nil, common.FieldValidation(name, "%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.FieldValidation(name, "invalid %s format", name)
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, common.FieldValidation(name, "%s must be a date in YYYY-MM-DD format", name)
	}
	return &t, nil
}

// requiredDateRange reads from and to, both mandatory
func requiredDateRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil {
		return time.Time{}, time.Time{}, common.FieldValidation("from", "from is required")
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to == nil {
		return time.Time{}, time.Time{}, common.FieldValidation("to", "to is required")
	}
	return *from, *to, nil
}

// queryInt parses an optional integer query parameter
func queryInt(c echo.Context, name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.FieldValidation(name, "%s must be an integer", name)
	}
	return v, nil
}

func bindBody(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.Validation("invalid request body")
	}
	return nil
}
