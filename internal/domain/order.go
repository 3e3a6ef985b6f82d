package domain

import "time"

// Order owns an ordered collection of OrderItems. Item insertion order
// is semantically meaningful: it is the tie-break for version-path
// assignment during tree normalization.
type Order struct {
	ID                 string
	Name               string
	ShortID            string
	CustomerRef        string
	TimetableYearLabel string
	Status             OrderStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
