package member

import "time"

type Member struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	AddressLine   string    `json:"addressLine"`
	SubdistrictID int64     `json:"subdistrictId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Province struct {
	ID     int64  `json:"id"`
	NameTH string `json:"nameTh"`
}

type District struct {
	ID         int64  `json:"id"`
	ProvinceID int64  `json:"provinceId"`
	NameTH     string `json:"nameTh"`
}

type Subdistrict struct {
	ID         int64  `json:"id"`
	DistrictID int64  `json:"districtId"`
	NameTH     string `json:"nameTh"`
	ZipCode    string `json:"zipCode"`
}
