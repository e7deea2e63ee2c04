package dbModel

import "time"

type User struct {
	UserID       int64     `db:"user_id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	Email        string    `db:"email"`
	CreatedAt    time.Time `db:"created_at"`
}
