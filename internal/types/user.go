package types

// User is a storefront account. Only the bcrypt hash is ever stored.
type User struct {
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"password" bson:"password"`
}
