package models

// FamilyMember is one entry of the fixed family roster.
type FamilyMember struct {
	ID     int64  `json:"id" yaml:"id" db:"id"`
	Name   string `json:"name" yaml:"name" db:"name"`
	Avatar string `json:"avatar" yaml:"avatar" db:"avatar"`
}
