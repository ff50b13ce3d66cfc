// internal/workers/data-access/query-employee-records/models.go
package queryemployeerecords

import "attrition-workers/internal/models"

type Input struct {
	QueryType  string `json:"queryType"`
	EmployeeID string `json:"employeeId,omitempty"`
	Department string `json:"department,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeEmployeeDetails       = models.QueryTypeEmployeeDetails
	QueryTypeEmployeesByDepartment = models.QueryTypeEmployeesByDepartment
	QueryTypeHighRiskEmployees     = models.QueryTypeHighRiskEmployees
)
