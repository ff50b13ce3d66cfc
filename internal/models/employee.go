// internal/models/employee.go
package models

// Employee is one HR record as served by the analytics API and stored in the
// employees table.
type Employee struct {
	EmployeeID      string  `json:"employeeId"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	JobRole         string  `json:"jobRole"`
	YearsAtCompany  int     `json:"yearsAtCompany"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	OverTime        bool    `json:"overTime"`
	JobSatisfaction int     `json:"jobSatisfaction"`
}
