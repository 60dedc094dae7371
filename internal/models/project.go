package models

import "time"

// Project is the construction site a work log is written against.
type Project struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateProjectRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Employee is a site worker selectable on a work log. Employees are
// reference data, they do not have accounts.
type Employee struct {
	ID        int       `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Trade     string    `json:"trade" db:"trade"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateEmployeeRequest struct {
	FullName string `json:"full_name"`
	Trade    string `json:"trade"`
}
