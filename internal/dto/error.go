package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error           string `json:"error"`
	Kind            string `json:"kind,omitempty"`
	Operation       string `json:"operation,omitempty"`
	CampaignID      string `json:"campaignID,omitempty"`
	TransactionHash string `json:"transactionHash,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
}
