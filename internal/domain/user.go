package domain

// User carries the identity fields the payment form is prefilled with.
// Account management itself lives outside this service.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}
