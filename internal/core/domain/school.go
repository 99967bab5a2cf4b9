package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type SchoolLocation struct {
	Country   string   `json:"country" bson:"country"`
	State     string   `json:"state" bson:"state"`
	City      string   `json:"city" bson:"city"`
	Zip       string   `json:"zip" bson:"zip"`
	County    string   `json:"county" bson:"county"`
	Latitude  float64  `json:"latitude" bson:"latitude"`
	Longitude float64  `json:"longitude" bson:"longitude"`
	GeoJSON   GeoPoint `json:"geoJSON" bson:"geoJSON"`
}

// UserLocation narrows a school's address to what a user record keeps.
func (l SchoolLocation) UserLocation() Location {
	return Location{Zip: l.Zip, City: l.City, State: l.State, GeoJSON: l.GeoJSON}
}

type SchoolDemographics struct {
	Enrollment  int    `json:"enrollment" bson:"enrollment"`
	NumTeachers int    `json:"numTeachers" bson:"numTeachers"`
	URL         string `json:"url,omitempty" bson:"url,omitempty"`
}

type SchoolContact struct {
	Telephone string `json:"telephone" bson:"telephone"`
	Website   string `json:"website" bson:"website"`
}

type SchoolMeta struct {
	Students        []primitive.ObjectID `json:"students" bson:"students"`
	SchoolOfficials []primitive.ObjectID `json:"schoolOfficials" bson:"schoolOfficials"`
	Courses         []primitive.ObjectID `json:"courses" bson:"courses"`
}

// School is reference data loaded from an external dataset. Only Meta is
// written by the application.
type School struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	NCESID       string             `json:"ncesid" bson:"ncesid"`
	DistrictID   string             `json:"districtId" bson:"districtId"`
	Type         int                `json:"type" bson:"type"`
	Status       int                `json:"status" bson:"status"`
	StartGrade   int                `json:"startGrade" bson:"startGrade"`
	EndGrade     int                `json:"endGrade" bson:"endGrade"`
	Location     SchoolLocation     `json:"location" bson:"location"`
	Demographics SchoolDemographics `json:"demographics" bson:"demographics"`
	Contact      SchoolContact      `json:"contact" bson:"contact"`
	Meta         SchoolMeta         `json:"meta" bson:"meta"`
	Distance     *Distance          `json:"distance,omitempty" bson:"distance,omitempty"`
}

// Distance holds the value computed by a nearest-neighbour query.
type Distance struct {
	Calculated float64 `json:"calculated" bson:"calculated"`
}
