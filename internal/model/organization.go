package model

type Role struct {
	Base
	RoleName    string `json:"role_name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
}

type Department struct {
	Base
	DepartmentName string `json:"department_name" gorm:"type:varchar(100);not null"`
	Description    string `json:"description" gorm:"type:text"`
}

// Branch is a showroom or warehouse location of the business
type Branch struct {
	Base
	BranchName string `json:"branch_name" gorm:"type:varchar(150);not null"`
	BranchCode string `json:"branch_code" gorm:"type:varchar(50)"`
	Address    string `json:"address" gorm:"type:text"`
	Phone      string `json:"phone" gorm:"type:varchar(20)"`
	Email      string `json:"email" gorm:"type:varchar(150)"`
	DistrictID *uint  `json:"district_id" gorm:"index"`
	StateID    *uint  `json:"state_id" gorm:"index"`
	CountryID  *uint  `json:"country_id" gorm:"index"`
	IsActive   bool   `json:"is_active"`
}
