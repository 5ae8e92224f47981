package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "email", "role", "createdAt"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"name":      bson.M{"bsonType": "string"},
			"email":     bson.M{"bsonType": "string"},
			"phone":     bson.M{"bsonType": "string"},
			"photo":     bson.M{"bsonType": "string"},
			"role":      bson.M{"enum": []string{"user", "guide", "lead-guide", "admin"}},
			"active":    bson.M{"bsonType": "bool"},
			"createdAt": bson.M{"bsonType": "date"},
		},
	},
}
