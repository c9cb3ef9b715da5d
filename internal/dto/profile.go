package dto

type ProfileUpdateRequest struct {
	Shop     string `json:"shop"`
	Location string `json:"location"`
	Merchant bool   `json:"merchant"`
}

type ProfileResponse struct {
	ProfileID string `json:"profileId"`
	Email     string `json:"email"`
	Shop      string `json:"shop"`
	Location  string `json:"location"`
	Merchant  bool   `json:"merchant"`
}

type DashboardResponse struct {
	Email    string `json:"email"`
	Shop     string `json:"shop"`
	Location string `json:"location"`
}
