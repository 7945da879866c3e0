package domain

import "time"

// ShopCredential maps an installed shop to its current Admin API access
// token. Written once per successful install, read on every upstream call.
type ShopCredential struct {
	Shop        string    `json:"shop" bson:"shop"`
	AccessToken string    `json:"access_token" bson:"accessToken"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
