package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestionTag is the well-known fixed tag of a question.
type QuestionTag string

const (
	TagEmail                     QuestionTag = "email"
	TagContactNumber             QuestionTag = "contact_number"
	TagRepresentedByFirmAttorney QuestionTag = "represented_by_firm_attorney"
	TagFirstName                 QuestionTag = "first_name"
	TagLastName                  QuestionTag = "last_name"
)

// User is an account referenced by leads.
type User struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Role              Role
	Capabilities      []string
	AssignedVendorIDs []uuid.UUID
	IsActive          bool
	CreatedAt         time.Time
}

// Question is a form question answered on leads.
type Question struct {
	ID    uuid.UUID
	Title string
	Type  string
	Tag   *QuestionTag
}

// Campaign groups leads by marketing source.
type Campaign struct {
	ID       uuid.UUID
	Title    string
	IsActive bool
}
