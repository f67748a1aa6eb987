package model

type Customer struct {
	Base
	CustomerName string `json:"customer_name" gorm:"type:varchar(150);not null"`
	Mobile       string `json:"mobile" gorm:"type:varchar(20);not null"`
	Email        string `json:"email" gorm:"type:varchar(150)"`
	Address      string `json:"address" gorm:"type:text"`
	GSTNo        string `json:"gst_no" gorm:"type:varchar(20)"`
	DistrictID   *uint  `json:"district_id" gorm:"index"`
	StateID      *uint  `json:"state_id" gorm:"index"`
	CountryID    *uint  `json:"country_id" gorm:"index"`
}
