package models

// NumberSequence holds one atomic counter per document-number prefix.
// Numbers may leave gaps but never repeat.
type NumberSequence struct {
	Prefix    string `gorm:"primary_key;size:16" json:"prefix"`
	LastValue int64  `gorm:"not null;default:0" json:"lastValue"`
}
