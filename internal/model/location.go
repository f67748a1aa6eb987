package model

// Country represents a country master record
type Country struct {
	Base
	Name string `json:"name" gorm:"type:varchar(100);not null"`
	Code string `json:"code" gorm:"type:varchar(10)"`
}

// State belongs to a country
type State struct {
	Base
	Name      string `json:"name" gorm:"type:varchar(100);not null"`
	Code      string `json:"code" gorm:"type:varchar(10)"`
	CountryID uint   `json:"country_id" gorm:"not null;index"`
}

// District belongs to a state
type District struct {
	Base
	Name    string `json:"name" gorm:"type:varchar(100);not null"`
	StateID uint   `json:"state_id" gorm:"not null;index"`
}
