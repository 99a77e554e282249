package domain

// CustomSound is a user supplied alarm. Src is a URL or a data URI.
type CustomSound struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Src      string `json:"src"`
	IsCustom bool   `json:"isCustom"`
}
