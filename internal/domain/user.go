package domain

// User is an account provisioned out of band. Users carry no stored role;
// the role is derived from team membership at login.
type User struct {
	ID    int
	Name  string
	Email string
}
