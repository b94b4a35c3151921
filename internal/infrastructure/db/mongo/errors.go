package mongo

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/technotes/notes-api/internal/core/domain"
)

const duplicateKeyCode = 11000

// Matches "index: username_1 dup key" in server messages that carry no keyValue.
var indexNamePattern = regexp.MustCompile(`index: (\w+?)_-?1\b`)

// uniqueViolation converts a duplicate key failure (mongo.IsDuplicateKeyError)
// into *domain.UniqueViolation naming the offending field.
func uniqueViolation(err error) *domain.UniqueViolation {
	field, value := duplicateKey(err)
	return &domain.UniqueViolation{Field: field, Value: value}
}

func duplicateKey(err error) (field, value string) {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code != duplicateKeyCode {
				continue
			}
			if f, v, ok := keyValue(e.Raw); ok {
				return f, v
			}
			if m := indexNamePattern.FindStringSubmatch(e.Message); m != nil {
				return m[1], ""
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if f, v, ok := keyValue(ce.Raw); ok {
			return f, v
		}
	}
	if m := indexNamePattern.FindStringSubmatch(err.Error()); m != nil {
		return m[1], ""
	}
	return "", ""
}

// keyValue reads the first entry of the keyValue document the server attaches
// to duplicate key write errors.
func keyValue(raw bson.Raw) (string, string, bool) {
	if len(raw) == 0 {
		return "", "", false
	}
	kv, err := raw.LookupErr("keyValue")
	if err != nil {
		return "", "", false
	}
	doc, ok := kv.DocumentOK()
	if !ok {
		return "", "", false
	}
	elems, err := doc.Elements()
	if err != nil || len(elems) == 0 {
		return "", "", false
	}
	value, _ := elems[0].Value().StringValueOK()
	return elems[0].Key(), value, true
}

// objectID parses a hex ID. Malformed IDs cannot match any document, so they
// are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}
