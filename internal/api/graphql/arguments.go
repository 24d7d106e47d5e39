package graphql

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pushcola/coupon-indexer/internal/api/shared/constants"
	apierrors "github.com/pushcola/coupon-indexer/internal/api/shared/errors"
	"github.com/pushcola/coupon-indexer/internal/api/shared/executor"
)

// arguments holds the coerced argument values of one field, defaults applied.
// Literals arrive as int64 while variables keep their JSON decoding.
type arguments map[string]interface{}

func (a arguments) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a arguments) intArg(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}

func (a arguments) uint64Arg(name string) (uint64, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, nil
	}

	var raw string
	switch n := v.(type) {
	case string:
		raw = n
	case json.Number:
		raw = n.String()
	case int:
		raw = strconv.Itoa(n)
	case int64:
		raw = strconv.FormatInt(n, 10)
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an unsigned integer", name)
	}

	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer", name)
	}
	return u, nil
}

// page reads limit and offset, capping the limit like the REST routes do
func (a arguments) page(defaultLimit int) (executor.Page, error) {
	limit, err := a.intArg("limit", defaultLimit)
	if err != nil {
		return executor.Page{}, apierrors.NewValidationError(err.Error())
	}
	if limit < 1 {
		return executor.Page{}, apierrors.NewValidationError("limit must be positive")
	}
	if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}

	offset, err := a.uint64Arg("offset")
	if err != nil {
		return executor.Page{}, apierrors.NewValidationError(err.Error())
	}

	return executor.Page{Limit: limit, Offset: offset}, nil
}
