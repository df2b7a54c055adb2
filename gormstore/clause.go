package gormstore

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/leandb"
)

var _availableColumnNameSymbols = append([]rune("_."), lo.AlphanumericCharset...)

type (
	tConjunct struct {
		Column   string
		Value    any
		Operator leandb.Operator
	}

	// tConjunction is a list of conjuncts joined by AND:
	//
	//	X = A1 AND A2 ... AND An, where Ai = Operator(Column, Value).
	tConjunction []tConjunct
)

// validateColumn guards against SQL injection by restricting allowed
// characters in column names.
func validateColumn(column string) error {
	if column == "" {
		return fmt.Errorf("empty column name")
	}

	if !lo.Every(_availableColumnNameSymbols, []rune(column)) {
		return fmt.Errorf("column name contains forbidden symbols '%s'", column)
	}

	return nil
}

func toConjunction[T any](filter leandb.Filter[T]) (tConjunction, error) {
	ret := make(tConjunction, 0, len(filter))
	for _, c := range filter {
		if !c.Operator.Valid() {
			return nil, fmt.Errorf("invalid operator '%s'", c.Operator)
		}

		if err := validateColumn(c.Field); err != nil {
			return nil, err
		}

		ret = append(ret, tConjunct{
			Column:   c.Field,
			Value:    c.Value,
			Operator: c.Operator,
		})
	}

	return ret, nil
}

// toGORMExpression converts a conjunct into the condition "Column Operator ?".
// The column goes through clause.Column, so the dialect quotes it and mixed
// case names survive on PostgreSQL.
func (c tConjunct) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("? %s ?", c.Operator),
		Vars: []any{clause.Column{Name: c.Column}, c.Value},
	}
}

// toSQLClause converts a conjunct to "Column Operator ?" with the value for
// the placeholder. The column is left unquoted.
func (c tConjunct) toSQLClause() (string, driver.Value) {
	return fmt.Sprintf("%s %s ?", c.Column, c.Operator), c.Value
}

// toGORMExpression joins the conjuncts with AND. Returns nil for an empty
// conjunction.
func (d tConjunction) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, conjunct := range d {
		andExpressions = append(andExpressions, conjunct.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toSQLClause converts the conjunction into "(K1 AND K2 AND K3)" with the
// placeholder values. An empty conjunction is "TRUE".
//
// Example:
//
//	tConjunction = {
//		{Column: "updatedAt", Operator: "<", Value: t},
//		{Column: "title", Operator: "!=", Value: "abc"}
//	}
//
// Result:
//
//	("(updatedAt < ? AND title != ?)", [t, "abc"])
func (d tConjunction) toSQLClause() (string, []driver.Value) {
	andClauses := make([]string, 0, len(d))
	andValues := make([]driver.Value, 0, len(d))

	for _, conjunct := range d {
		andClause, andValue := conjunct.toSQLClause()
		andClauses = append(andClauses, andClause)
		andValues = append(andValues, andValue)
	}

	if len(andClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
	}

	return "TRUE", nil
}

// ToSQL renders a filter as an SQL condition for hand-written queries.
//
// Usage:
//
//	cond, args, err := gormstore.ToSQL(filter)
//	query := fmt.Sprintf("SELECT * FROM notes WHERE %s", cond)
func ToSQL[T any](filter leandb.Filter[T]) (string, []driver.Value, error) {
	conj, err := toConjunction(filter)
	if err != nil {
		return "", nil, err
	}

	cond, args := conj.toSQLClause()

	return cond, args, nil
}
