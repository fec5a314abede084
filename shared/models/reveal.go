package models

// RevealContext holds the fields the reveal challenge message is built from.
type RevealContext struct {
	PublicKey       string `json:"publicKey"`
	ContractAddress string `json:"contractAddress"`
	ChainID         int64  `json:"chainId"`
	StartTimestamp  int64  `json:"startTimestamp"`
	DurationDays    int    `json:"durationDays"`
}

// DefaultRevealDurationDays matches the duration the wallet client always requested.
const DefaultRevealDurationDays = 30
