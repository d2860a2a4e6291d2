package domain

import "time"

// OperatorRole controls which endpoints an operator may use.
type OperatorRole string

const (
	OperatorRoleAdmin     OperatorRole = "ADMIN"
	OperatorRoleValidator OperatorRole = "VALIDATOR"
)

// Operator is a staff account that issues tickets or works an entrance gate.
// Its ID is recorded as ValidatedBy when a ticket is validated.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OperatorRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
