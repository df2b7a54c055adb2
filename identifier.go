package leandb

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID parses a 24-character hex string into a 12-byte object id.
func ParseObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, &InvalidIdentifierError{Value: value, Err: err}
	}

	return id, nil
}

// ParseUUID parses the textual forms accepted by uuid.Parse.
func ParseUUID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, &InvalidIdentifierError{Value: value, Err: err}
	}

	return id, nil
}
