package dto

type IdentityOutput struct {
	UserID   string
	HasToken bool
}

type StatusOutput struct {
	SignedIn  bool
	UserID    string
	LocalOnly bool
	Reason    string
}
