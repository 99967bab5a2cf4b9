package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerdemirkan/stem-bound-api/internal/core/ports"
)

const (
	geoKey        = "location.geoJSON"
	distanceField = "distance.calculated"
)

func sortDoc(fields []ports.SortField) bson.D {
	if len(fields) == 0 {
		return nil
	}
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

func findOptions(page ports.Page) *options.FindOptions {
	opts := options.Find().SetSkip(int64(page.Skip))
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	if s := sortDoc(page.Sort); s != nil {
		opts.SetSort(s)
	}
	return opts
}

// geoNearPipeline orders documents by distance from near. The filter goes
// into $geoNear's own query option because $geoNear must be the first stage.
func geoNearPipeline(near ports.Near, filter bson.M, page ports.Page) mongo.Pipeline {
	geoNear := bson.D{
		{Key: "near", Value: near.Point},
		{Key: "distanceField", Value: distanceField},
		{Key: "key", Value: geoKey},
		{Key: "spherical", Value: true},
	}
	if len(filter) > 0 {
		geoNear = append(geoNear, bson.E{Key: "query", Value: filter})
	}

	pipeline := mongo.Pipeline{{{Key: "$geoNear", Value: geoNear}}}
	if s := sortDoc(page.Sort); s != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: s}})
	}
	if page.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: page.Skip}})
	}
	if page.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: page.Limit}})
	}
	return pipeline
}

func userFilter(f ports.UserFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	id := bson.M{}
	if len(f.IDs) > 0 {
		id["$in"] = f.IDs
	}
	if len(f.ExcludeIDs) > 0 {
		id["$nin"] = f.ExcludeIDs
	}
	if len(id) > 0 {
		filter["_id"] = id
	}
	if f.Text != "" {
		filter["$text"] = bson.M{"$search": f.Text}
	}
	return filter
}

func courseFilter(f ports.CourseFilter) bson.M {
	filter := bson.M{}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	if !f.School.IsZero() {
		filter["meta.school"] = f.School
	}
	if !f.Instructor.IsZero() {
		filter["meta.instructors"] = f.Instructor
	}
	if !f.Student.IsZero() {
		filter["meta.students"] = f.Student
	}
	if f.VerificationStatus != "" {
		filter["verificationStatus"] = string(f.VerificationStatus)
	}
	if f.Text != "" {
		filter["$text"] = bson.M{"$search": f.Text}
	}
	return filter
}

func schoolFilter(f ports.SchoolFilter) bson.M {
	filter := bson.M{}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	if f.Text != "" {
		filter["$text"] = bson.M{"$search": f.Text}
	}
	return filter
}

func chatFilter(f ports.ChatFilter) bson.M {
	filter := bson.M{}
	if len(f.Users) == 0 {
		return filter
	}
	users := bson.M{"$all": f.Users}
	if f.Exact {
		users["$size"] = len(f.Users)
	}
	filter["meta.users"] = users
	return filter
}
