package domain

type Credentials struct {
	Email    Email
	Password Password
}

// User is the signed-in principal carried in the session token.
type User struct {
	Email Email
}
