package common

// Role-specific extensions of a user account, one-to-one with the user.

type BrandProfile struct {
	Id          string `json:"id"`
	UserId      string `json:"userId"`
	CompanyName string `json:"companyName"`
	Website     string `json:"website,omitempty"`
}

type InfluencerProfile struct {
	Id       string `json:"id"`
	UserId   string `json:"userId"`
	Category string `json:"category"`
	Bio      string `json:"bio,omitempty"`
}
