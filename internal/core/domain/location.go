package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// ZipLocation is a postal code entry of the location reference dataset.
type ZipLocation struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Zip     string             `json:"zip" bson:"zip"`
	City    string             `json:"city" bson:"city"`
	State   string             `json:"state" bson:"state"`
	GeoJSON GeoPoint           `json:"geoJSON" bson:"geoJSON"`
}

func (l ZipLocation) UserLocation() Location {
	return Location{Zip: l.Zip, City: l.City, State: l.State, GeoJSON: l.GeoJSON}
}
