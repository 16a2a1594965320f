// AngelaMos | 2026
// entity.go

package customer

import (
	"time"
)

type Customer struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Company   string     `db:"company"`
	Phone     string     `db:"phone"`
	Address   string     `db:"address"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
