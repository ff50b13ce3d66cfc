// internal/models/query_types.go
package models

// QueryType names one canned HR records query.
type QueryType string

const (
	QueryTypeEmployeeDetails       QueryType = "employee_details"
	QueryTypeEmployeesByDepartment QueryType = "employees_by_department"
	QueryTypeHighRiskEmployees     QueryType = "high_risk_employees"
)
