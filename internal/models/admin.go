package models

// Administrator — row from the administrators table. The password is
// stored as a bcrypt hash in password_hash; never held in plain text.
type Administrator struct {
	ID    int
	Login string
}
