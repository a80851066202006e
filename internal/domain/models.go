package domain

type User struct {
	Username     string
	PasswordHash string
	Roles        []string
}
