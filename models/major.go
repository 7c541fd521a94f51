package models

// Major represents a field of study
type Major struct {
	ID   int64  `json:"major_id" db:"major_id"`
	Name string `json:"major" db:"major"`
}

// TableName returns the table name for the Major model
func (Major) TableName() string {
	return "major"
}

// NewMajor creates a new Major instance
func NewMajor(name string) *Major {
	return &Major{Name: name}
}

// String returns the major name
func (m Major) String() string {
	return m.Name
}
