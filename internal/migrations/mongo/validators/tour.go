package validators

import "go.mongodb.org/mongo-driver/bson"

var TourValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "duration", "maxGroupSize", "difficulty", "price", "summary", "createdAt"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"name":         bson.M{"bsonType": "string", "minLength": 10, "maxLength": 40},
			"destination":  bson.M{"bsonType": "string"},
			"duration":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"maxGroupSize": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"difficulty":   bson.M{"enum": []string{"easy", "medium", "difficult"}},
			"ratingsAverage": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  1,
				"maximum":  5,
			},
			"ratingsQuantity": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"price":           bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
			"priceDiscount":   bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
			"summary":         bson.M{"bsonType": "string"},
			"images":          bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			"startDates":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "date"}},
			"createdAt":       bson.M{"bsonType": "date"},
			"__v":             bson.M{"bsonType": []string{"int", "long"}},
		},
	},
}
