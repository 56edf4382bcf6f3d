package domain

import "github.com/uptrace/bun"

// Contact is an internal organization contact that appointments reference.
type Contact struct {
	bun.BaseModel `bun:"table:contacts"`

	ID    int64  `bun:"id,pk"`
	Name  string `bun:"name,notnull"`
	Email string `bun:"email"`
}

// User is an application user that can log in and be assigned appointments.
// PasswordHash is a bcrypt digest; plaintext passwords are never stored.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64  `bun:"id,pk"`
	Username     string `bun:"username,notnull,unique"`
	PasswordHash string `bun:"password_hash,notnull"`
}

// Country and FirstLevelDivision are the reference tables behind a
// customer's division denormalization.
type Country struct {
	bun.BaseModel `bun:"table:countries"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

type FirstLevelDivision struct {
	bun.BaseModel `bun:"table:first_level_divisions"`

	ID        int64  `bun:"id,pk"`
	Name      string `bun:"name,notnull"`
	CountryID int64  `bun:"country_id,notnull"`
}
