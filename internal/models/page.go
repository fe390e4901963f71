package models

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// ProfileStatistics summarises a user's activity.
type ProfileStatistics struct {
	Products  int64 `json:"products"`
	Favorites int64 `json:"favorites"`
	CartItems int64 `json:"cart_items"`
	Reviews   int64 `json:"reviews"`
}
