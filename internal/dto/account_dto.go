package dto

type BillingPortalResponse struct {
	URL string `json:"url"`
}

type IdentifyRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
