package leandb

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// ForOperator returns the strict range operator that walks in the direction.
func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

// ParseDirection accepts "asc" and "desc" in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid ordering direction '%s'", s)
	}

	return d, nil
}

// ResolveField picks the field named name out of the candidates. Unknown names
// fail with ErrContractViolation and the closest candidate as a hint, so
// user-facing sort and projection parameters can be mapped onto typed fields.
func ResolveField[T any](name string, fields ...FieldRef[T]) (FieldRef[T], error) {
	name = strings.TrimSpace(name)

	field, ok := lo.Find(fields, func(f FieldRef[T]) bool {
		return f.Name() == name
	})
	if ok {
		return field, nil
	}

	names := lo.Map(fields, func(f FieldRef[T], _ int) string {
		return f.Name()
	})

	return nil, contractViolation("unknown field '%s'. closest: '%s'", name, closestName(name, names))
}

func closestName(input string, dataSet []string) string {
	minDist := math.MaxInt
	closest := ""

	for _, candidate := range dataSet {
		dist := levenshtein([]rune(candidate), []rune(input))
		if dist < minDist {
			minDist = dist
			closest = candidate
		}
	}

	return closest
}
