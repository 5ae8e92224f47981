package validators

import "go.mongodb.org/mongo-driver/bson"

// References are stored as hex strings, matching the API representation.
var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"review", "rating", "tour", "user", "createdAt"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"review":    bson.M{"bsonType": "string", "maxLength": 1000},
			"rating":    bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 1, "maximum": 5},
			"tour":      bson.M{"bsonType": "string", "pattern": objectIDPattern},
			"user":      bson.M{"bsonType": "string", "pattern": objectIDPattern},
			"createdAt": bson.M{"bsonType": "date"},
		},
	},
}

const objectIDPattern = "^[0-9a-fA-F]{24}$"
