package models

// Resource is a single bookable charging unit.
type Resource struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
