package hostlib

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

type dbHandle struct {
	conn *sql.DB
}

func (h *dbHandle) close() error {
	if h.conn == nil {
		return nil
	}
	return h.conn.Close()
}

// registerDB opens the SQLite database and wires dbExec and dbQuery.
// dbExec returns the affected row count; dbQuery returns an array of
// hashes, one per row, keyed by column name.
func (h *Host) registerDB(reg *native.Registry, path string) error {
	if path == "" {
		path = ":memory:"
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	h.db.conn = conn

	reg.Register("dbExec", native.Variadic(1), func(args ...evaluator.Object) evaluator.Object {
		query, params, errObj := dbArgs("dbExec", args)
		if errObj != nil {
			return errObj
		}
		result, err := conn.Exec(query, params...)
		if err != nil {
			return evaluator.NewError(evaluator.RuntimeErrorKind, "dbExec: %v", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return evaluator.NewError(evaluator.RuntimeErrorKind, "dbExec: %v", err)
		}
		return &evaluator.Integer{Value: affected}
	})

	reg.Register("dbQuery", native.Variadic(1), func(args ...evaluator.Object) evaluator.Object {
		query, params, errObj := dbArgs("dbQuery", args)
		if errObj != nil {
			return errObj
		}
		rows, err := conn.Query(query, params...)
		if err != nil {
			return evaluator.NewError(evaluator.RuntimeErrorKind, "dbQuery: %v", err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return evaluator.NewError(evaluator.RuntimeErrorKind, "dbQuery: %v", err)
		}

		out := &evaluator.Array{}
		for rows.Next() {
			values := make([]interface{}, len(columns))
			scans := make([]interface{}, len(columns))
			for i := range values {
				scans[i] = &values[i]
			}
			if err := rows.Scan(scans...); err != nil {
				return evaluator.NewError(evaluator.RuntimeErrorKind, "dbQuery: %v", err)
			}
			row := evaluator.NewHash()
			for i, col := range columns {
				row.Set(&evaluator.String{Value: col}, sqlObject(values[i]))
			}
			out.Elements = append(out.Elements, row)
		}
		if err := rows.Err(); err != nil {
			return evaluator.NewError(evaluator.RuntimeErrorKind, "dbQuery: %v", err)
		}
		return out
	})

	return nil
}

// dbArgs splits the query string from its bind parameters.
func dbArgs(name string, args []evaluator.Object) (string, []interface{}, *evaluator.Error) {
	query, ok := evaluator.Force(args[0]).(*evaluator.String)
	if !ok {
		return "", nil, evaluator.NewError(evaluator.TypeErrorKind,
			"%s expects a String query, got %s", name, evaluator.TypeName(args[0]))
	}
	params := make([]interface{}, 0, len(args)-1)
	for _, arg := range args[1:] {
		value, err := sqlParam(arg)
		if err != nil {
			return "", nil, err
		}
		params = append(params, value)
	}
	return query.Value, params, nil
}

func sqlParam(obj evaluator.Object) (interface{}, *evaluator.Error) {
	switch v := evaluator.Force(obj).(type) {
	case *evaluator.Null:
		return nil, nil
	case *evaluator.Boolean:
		return v.Value, nil
	case *evaluator.Integer:
		return v.Value, nil
	case *evaluator.Float:
		return v.Value, nil
	case *evaluator.Decimal:
		return evaluator.DisplayString(v), nil
	case *evaluator.String:
		return v.Value, nil
	default:
		return nil, evaluator.NewError(evaluator.TypeErrorKind,
			"cannot bind %s as a query parameter", evaluator.TypeName(obj))
	}
}

func sqlObject(value interface{}) evaluator.Object {
	switch v := value.(type) {
	case nil:
		return evaluator.NULL
	case bool:
		return evaluator.NativeBoolToBooleanObject(v)
	case int64:
		return &evaluator.Integer{Value: v}
	case float64:
		return &evaluator.Float{Value: v}
	case string:
		return &evaluator.String{Value: v}
	case []byte:
		return &evaluator.String{Value: string(v)}
	case time.Time:
		return &evaluator.String{Value: v.Format(time.RFC3339)}
	default:
		return evaluator.NULL
	}
}
