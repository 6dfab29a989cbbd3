package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	BasketID ID
	ReportID ID
)

func NewBasketID() BasketID { return BasketID(NewID()) }
func NewReportID() ReportID { return ReportID(NewID()) }

func (id BasketID) String() string { return ID(id).String() }
func (id ReportID) String() string { return ID(id).String() }

// ParseBasketID parses a string into BasketID
func ParseBasketID(s string) (BasketID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("basket ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("basket ID %q is not a UUID: %w", s, err)
	}
	return BasketID(s), nil
}

// ParseReportID parses a string into ReportID
func ParseReportID(s string) (ReportID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("report ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("report ID %q is not a UUID: %w", s, err)
	}
	return ReportID(s), nil
}
