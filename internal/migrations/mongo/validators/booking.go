package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"tour", "user", "price", "participants", "status", "createdAt"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"tour":         bson.M{"bsonType": "string", "pattern": objectIDPattern},
			"user":         bson.M{"bsonType": "string", "pattern": objectIDPattern},
			"price":        bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
			"participants": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 50},
			"startDate":    bson.M{"bsonType": "date"},
			"status":       bson.M{"enum": []string{"pending", "confirmed", "cancelled"}},
			"paid":         bson.M{"bsonType": "bool"},
			"createdAt":    bson.M{"bsonType": "date"},
		},
	},
}
