package model

import (
	"errors"
	"strings"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidStatus   = errors.New("invalid status")
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"

	DefaultPriority = PriorityMedium
)

type Category string

const (
	CategoryWork      Category = "WORK"
	CategoryPersonal  Category = "PERSONAL"
	CategoryUrgent    Category = "URGENT"
	CategoryShopping  Category = "SHOPPING"
	CategoryHealth    Category = "HEALTH"
	CategoryEducation Category = "EDUCATION"

	DefaultCategory = CategoryPersonal
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"

	DefaultStatus = StatusPending
)

var (
	priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent, CategoryShopping, CategoryHealth, CategoryEducation}
	statuses   = []Status{StatusPending, StatusInProgress, StatusCompleted}
)

// ParsePriority matches an enum name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	for _, p := range priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", ErrInvalidPriority
}

// ParseCategory matches an enum name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ParseStatus matches an enum name case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (p Priority) Valid() bool {
	for _, v := range priorities {
		if v == p {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
