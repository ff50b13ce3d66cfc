// internal/workers/data-access/query-employee-records/queries/employee.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"attrition-workers/internal/models"
)

// EmployeeDetails returns one employee with their latest prediction, or no
// rows when the employee does not exist.
func EmployeeDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	employeeID, ok := stringParam(params, "employeeId")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var (
		e              models.Employee
		classification sql.NullString
		probability    sql.NullFloat64
		textAI         sql.NullString
	)

	err := db.QueryRowContext(ctx, `
		SELECT e.employee_id, e.name, e.department, e.job_role, e.years_at_company,
		       e.monthly_income, e.over_time, e.job_satisfaction,
		       p.classification, p.probability, p.text_ai
		FROM employees e
		LEFT JOIN LATERAL (
			SELECT classification, probability, text_ai
			FROM attrition_predictions
			WHERE employee_id = e.employee_id
			ORDER BY predicted_at DESC
			LIMIT 1
		) p ON true
		WHERE e.employee_id = $1`, employeeID).Scan(
		&e.EmployeeID, &e.Name, &e.Department, &e.JobRole, &e.YearsAtCompany,
		&e.MonthlyIncome, &e.OverTime, &e.JobSatisfaction,
		&classification, &probability, &textAI,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"employee": e,
	}
	if classification.Valid || probability.Valid {
		result["prediction"] = models.Prediction{
			EmployeeID:     e.EmployeeID,
			Name:           e.Name,
			Department:     e.Department,
			Classification: classification.String,
			Probability:    probability.Float64,
			TextAI:         textAI.String,
		}
	}

	return result, 1, time.Since(start).Milliseconds(), nil
}

// EmployeesByDepartment lists employees of one department ordered by name.
func EmployeesByDepartment(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	department, ok := stringParam(params, "department")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT employee_id, name, department, job_role, years_at_company,
		       monthly_income, over_time, job_satisfaction
		FROM employees
		WHERE department = $1
		ORDER BY name
		LIMIT $2`, department, limitParam(params))
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(
			&e.EmployeeID, &e.Name, &e.Department, &e.JobRole, &e.YearsAtCompany,
			&e.MonthlyIncome, &e.OverTime, &e.JobSatisfaction,
		); err != nil {
			return nil, 0, 0, err
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return employees, len(employees), time.Since(start).Milliseconds(), nil
}

// HighRiskEmployees lists the latest predictions classified high risk or at
// or above HighRiskThreshold, most likely leavers first. department is
// optional.
func HighRiskEmployees(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	department, _ := stringParam(params, "department")

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT ON (p.employee_id)
		       p.employee_id, e.name, e.department, p.classification, p.probability, p.text_ai
		FROM attrition_predictions p
		JOIN employees e ON e.employee_id = p.employee_id
		WHERE ($1 = '' OR e.department = $1)
		ORDER BY p.employee_id, p.predicted_at DESC`, department)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	limit := limitParam(params)
	predictions := []models.Prediction{}
	for rows.Next() {
		var (
			p      models.Prediction
			textAI sql.NullString
		)
		if err := rows.Scan(&p.EmployeeID, &p.Name, &p.Department, &p.Classification, &p.Probability, &textAI); err != nil {
			return nil, 0, 0, err
		}
		p.TextAI = textAI.String
		if isHighRisk(p) {
			predictions = append(predictions, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	sortByProbability(predictions)
	if len(predictions) > limit {
		predictions = predictions[:limit]
	}

	return predictions, len(predictions), time.Since(start).Milliseconds(), nil
}
