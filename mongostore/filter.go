package mongostore

import (
	"fmt"
	"reflect"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Alp4ka/leandb"
)

var _operators = map[leandb.Operator]string{
	leandb.OperatorEq:  "$eq",
	leandb.OperatorNe:  "$ne",
	leandb.OperatorGT:  "$gt",
	leandb.OperatorGTE: "$gte",
	leandb.OperatorLT:  "$lt",
	leandb.OperatorLTE: "$lte",
}

var _objectIDType = reflect.TypeOf(primitive.ObjectID{})

// translateFilter converts a filter into a query document. Conditions on one
// field share an operator document:
//
//	{"updatedAt": {"$lt": t1, "$gte": t0}, "title": {"$eq": "x"}}
//
// A field repeating an operator cannot be expressed that way, and the whole
// filter is rendered as {"$and": [...]} with one document per condition.
func translateFilter[T any](schema *leandb.Schema, filter leandb.Filter[T]) (bson.D, error) {
	if len(filter) == 0 {
		return bson.D{}, nil
	}

	fields, grouped := filter.ByField()

	ret := make(bson.D, 0, len(fields))
	for _, field := range fields {
		ops := bson.D{}
		for _, c := range grouped[field] {
			op, value, err := translateCondition(schema, c)
			if err != nil {
				return nil, err
			}

			if lo.ContainsBy(ops, func(e bson.E) bool { return e.Key == op }) {
				return translateConjunction(schema, filter)
			}

			ops = append(ops, bson.E{Key: op, Value: value})
		}

		ret = append(ret, bson.E{Key: field, Value: ops})
	}

	return ret, nil
}

func translateConjunction[T any](schema *leandb.Schema, filter leandb.Filter[T]) (bson.D, error) {
	conjuncts := make(bson.A, 0, len(filter))
	for _, c := range filter {
		op, value, err := translateCondition(schema, c)
		if err != nil {
			return nil, err
		}

		conjuncts = append(conjuncts, bson.D{{Key: c.Field, Value: bson.D{{Key: op, Value: value}}}})
	}

	return bson.D{{Key: "$and", Value: conjuncts}}, nil
}

func translateCondition[T any](schema *leandb.Schema, c leandb.Condition[T]) (string, any, error) {
	op, ok := _operators[c.Operator]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator '%s'", c.Operator)
	}

	value, err := coerceValue(schema, c.Field, c.Value)
	if err != nil {
		return "", nil, err
	}

	return op, value, nil
}

// coerceValue turns string and raw byte identifiers into object ids when the
// record stores the field as one.
func coerceValue(schema *leandb.Schema, field string, value any) (any, error) {
	t, ok := schema.Type(field)
	if !ok || t != _objectIDType || value == nil {
		return value, nil
	}

	v := reflect.ValueOf(value)
	switch {
	case v.Type() == _objectIDType:
		return value, nil
	case v.Kind() == reflect.String:
		return leandb.ParseObjectID(v.String())
	case v.Kind() == reflect.Array && v.Type().ConvertibleTo(_objectIDType):
		return v.Convert(_objectIDType).Interface(), nil
	default:
		return value, nil
	}
}

func translateProjection[T any](p leandb.Projection[T]) bson.D {
	if p.IsEmpty() {
		return nil
	}

	ret := bson.D{}
	for _, f := range p.Fields() {
		ret = append(ret, bson.E{Key: f, Value: 1})
	}

	if p.ExcludesID() {
		ret = append(ret, bson.E{Key: leandb.InternalIDKey, Value: 0})
	}

	return ret
}

func translatePatch[T any](schema *leandb.Schema, p leandb.Patch[T]) (bson.D, error) {
	set := make(bson.D, 0, len(p))
	for _, a := range p {
		value, err := coerceValue(schema, a.Field, a.Value)
		if err != nil {
			return nil, err
		}

		set = append(set, bson.E{Key: a.Field, Value: value})
	}

	return bson.D{{Key: "$set", Value: set}}, nil
}
