package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a retail location and the tenancy unit for products, orders and
// stock requests.
type Branch struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Address    string    `gorm:"type:text" json:"address"`
	City       string    `gorm:"type:varchar(100)" json:"city"`
	Province   string    `gorm:"type:varchar(100)" json:"province"`
	Phone      string    `gorm:"type:varchar(20)" json:"phone"`
	OriginCode string    `gorm:"type:varchar(20)" json:"origin_code"` // city code used as shipping origin
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
