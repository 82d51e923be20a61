package postgres

import "time"

const userProfilesTable = "user_profiles"

type userProfileTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Age       float64   `db:"age"`
	Height    float64   `db:"height"`
	Weight    float64   `db:"weight"`
	Goal      string    `db:"goal"`
	CreatedAt time.Time `db:"created_at"`
}

type userProfileInsertModel struct {
	PublicID string  `db:"public_id"`
	Name     string  `db:"name"`
	Email    string  `db:"email"`
	Age      float64 `db:"age"`
	Height   float64 `db:"height"`
	Weight   float64 `db:"weight"`
	Goal     string  `db:"goal"`
}
