// internal/workers/data-access/query-employee-records/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"attrition-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

const (
	DefaultLimit = 100
	MaxLimit     = 500

	// HighRiskThreshold is the probability at or above which an employee
	// counts as high risk regardless of classification.
	HighRiskThreshold = 0.7
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeEmployeeDetails:       EmployeeDetails,
	models.QueryTypeEmployeesByDepartment: EmployeesByDepartment,
	models.QueryTypeHighRiskEmployees:     HighRiskEmployees,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func stringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok && v != ""
}

// limitParam clamps the requested limit to 1..MaxLimit.
func limitParam(params map[string]interface{}) int {
	limit, ok := params["limit"].(int)
	if !ok || limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
