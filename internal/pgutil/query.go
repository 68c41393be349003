// Package pgutil assembles the dynamic WHERE and SET clauses used by the
// repositories. Column names are always literals from the caller; only values
// travel as arguments.
package pgutil

import (
	"fmt"
	"strings"
)

// Args numbers positional parameters.
type Args struct {
	values []any
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

func (a *Args) Values() []any { return a.values }

// Where joins conditions with AND. Each cond holds exactly one "?" for its value.
type Where struct {
	Args
	conds []string
}

func (w *Where) Add(cond string, v any) {
	w.conds = append(w.conds, strings.Replace(cond, "?", w.Args.Add(v), 1))
}

// Raw adds a condition without a value.
func (w *Where) Raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// Update collects column assignments for a partial update.
type Update struct {
	Args
	sets []string
}

func (u *Update) Set(col string, v any) {
	u.sets = append(u.sets, col+" = "+u.Args.Add(v))
}

// SetRaw assigns an SQL expression such as now().
func (u *Update) SetRaw(col, expr string) {
	u.sets = append(u.sets, col+" = "+expr)
}

func (u *Update) Empty() bool { return len(u.sets) == 0 }

// Joined is the comma separated assignment list.
func (u *Update) Joined() string { return strings.Join(u.sets, ", ") }

// Owned renders an UPDATE of one row owned by userID.
func (u *Update) Owned(table string, id, userID any, returning string) string {
	idArg := u.Args.Add(id)
	userArg := u.Args.Add(userID)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s AND user_id = %s", table, u.Joined(), idArg, userArg)
	if returning != "" {
		q += " RETURNING " + returning
	}
	return q
}
