package dto

type VerifyRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}
