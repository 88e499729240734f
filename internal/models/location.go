// internal/models/location.go
package models

type LocationType string

const (
	LocationBranch LocationType = "branch"
	LocationAgent  LocationType = "agent"
)

type Location struct {
	ID      string       `db:"id" json:"id"`
	Name    string       `db:"name" json:"name"`
	Type    LocationType `db:"type" json:"type"`
	Status  string       `db:"status" json:"status"`
	Lat     float64      `db:"lat" json:"lat"`
	Lng     float64      `db:"lng" json:"lng"`
	Phone   string       `db:"phone" json:"phone"`
	Address string       `db:"address" json:"address"`
}
