package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// ColumnType is the storage type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeText
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Table describes one record table. Tables with AutoID get an "id"
// auto-increment primary key; otherwise Key is the primary key.
type Table struct {
	Name    string
	Key     []string
	AutoID  bool
	Columns []Column
	Indexes [][]string
}

// Table names.
const (
	TableSessions       = "tutor_sessions"
	TableEvidence       = "progress_evidence"
	TableEvaluationLog  = "evaluation_log"
	TableLLMRequestLogs = "llm_request_events"
)

// Tables is the schema shared by every backend.
var Tables = []Table{
	{
		Name: TableSessions,
		Key:  []string{"session_id"},
		Columns: []Column{
			{Name: "session_id", Type: TypeString},
			{Name: "student_id", Type: TypeString},
			{Name: "topic_id", Type: TypeString},
			{Name: "topic_name", Type: TypeString},
			{Name: "subject_code", Type: TypeString},
			{Name: "attempts", Type: TypeInt},
			{Name: "correct_streak", Type: TypeInt},
			{Name: "last_evaluation", Type: TypeString},
			{Name: "last_action", Type: TypeString},
			{Name: "phase", Type: TypeString},
			{Name: "current_question", Type: TypeText},
			{Name: "expected_answer_hint", Type: TypeText},
			{Name: "curriculum_position_confirmed", Type: TypeBool},
			{Name: "diagnostic_questions_asked", Type: TypeInt},
			{Name: "created_at", Type: TypeTime},
			{Name: "updated_at", Type: TypeTime},
		},
		Indexes: [][]string{{"student_id"}},
	},
	{
		Name: TableEvidence,
		Key:  []string{"student_id", "session_id", "topic_id"},
		Columns: []Column{
			{Name: "student_id", Type: TypeString},
			{Name: "session_id", Type: TypeString},
			{Name: "topic_id", Type: TypeString},
			{Name: "subject_id", Type: TypeString},
			{Name: "attempts", Type: TypeInt},
			{Name: "correct_count", Type: TypeInt},
			{Name: "incorrect_count", Type: TypeInt},
			{Name: "partial_count", Type: TypeInt},
			{Name: "last_evaluation", Type: TypeString},
			{Name: "understanding_state", Type: TypeString},
			{Name: "delivery_modes_used", Type: TypeText},
			{Name: "last_interaction_at", Type: TypeTime},
		},
		Indexes: [][]string{{"student_id", "subject_id"}},
	},
	{
		Name:   TableEvaluationLog,
		AutoID: true,
		Columns: []Column{
			{Name: "session_id", Type: TypeString},
			{Name: "student_id", Type: TypeString},
			{Name: "evaluation", Type: TypeString},
			{Name: "confidence", Type: TypeFloat},
			{Name: "error_type", Type: TypeString},
			{Name: "question", Type: TypeText},
			{Name: "answer", Type: TypeText},
			{Name: "action_taken", Type: TypeString},
			{Name: "created_at", Type: TypeTime},
		},
		Indexes: [][]string{{"session_id"}},
	},
	{
		Name:   TableLLMRequestLogs,
		AutoID: true,
		Columns: []Column{
			{Name: "provider", Type: TypeString},
			{Name: "model", Type: TypeString},
			{Name: "purpose", Type: TypeString},
			{Name: "input_tokens", Type: TypeInt},
			{Name: "output_tokens", Type: TypeInt},
			{Name: "latency_ms", Type: TypeInt},
			{Name: "success", Type: TypeBool},
			{Name: "error_message", Type: TypeText},
			{Name: "request_body", Type: TypeText},
			{Name: "response_body", Type: TypeText},
			{Name: "created_at", Type: TypeTime},
		},
		Indexes: [][]string{{"purpose"}},
	},
}

// lookupTable returns the declared table called name.
func lookupTable(name string) (*Table, error) {
	for i := range Tables {
		if Tables[i].Name == name {
			return &Tables[i], nil
		}
	}
	return nil, fmt.Errorf("store: unknown table %q", name)
}

// PrimaryKey returns the key columns used for Get and default upserts.
func (t *Table) PrimaryKey() []string {
	if t.AutoID {
		return []string{"id"}
	}
	return t.Key
}

// ColumnNames returns every column in declaration order, including id.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+1)
	if t.AutoID {
		names = append(names, "id")
	}
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// values orders rec's values by the table's writable columns. Missing
// columns are written as their zero value.
func (t *Table) values(rec Record) ([]string, []any, error) {
	for col := range rec {
		if col == "id" && t.AutoID {
			continue
		}
		if !slices.ContainsFunc(t.Columns, func(c Column) bool { return c.Name == col }) {
			return nil, nil, fmt.Errorf("%s: unknown column %q", t.Name, col)
		}
	}
	cols := make([]string, 0, len(t.Columns))
	vals := make([]any, 0, len(t.Columns))
	for _, c := range t.Columns {
		v, ok := rec[c.Name]
		if !ok || v == nil {
			if c.Nullable {
				continue
			}
			v = c.Type.zero()
		}
		cols = append(cols, c.Name)
		vals = append(vals, v)
	}
	return cols, vals, nil
}

func (ct ColumnType) zero() any {
	switch ct {
	case TypeInt:
		return int64(0)
	case TypeFloat:
		return float64(0)
	case TypeBool:
		return false
	case TypeTime:
		return time.Time{}
	default:
		return ""
	}
}

func (ct ColumnType) fieldType() field.Type {
	switch ct {
	case TypeInt:
		return field.TypeInt64
	case TypeFloat:
		return field.TypeFloat64
	case TypeBool:
		return field.TypeBool
	case TypeTime:
		return field.TypeTime
	default:
		return field.TypeString
	}
}

// textSize pushes string columns past the varchar limit so they map to
// TEXT on every dialect.
const textSize = 1 << 20

// entTable converts a table to an ent migration schema.
func (t *Table) entTable() *schema.Table {
	tbl := schema.NewTable(t.Name)
	if t.AutoID {
		tbl.AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt64, Increment: true})
	}
	for _, c := range t.Columns {
		col := &schema.Column{Name: c.Name, Type: c.Type.fieldType(), Nullable: c.Nullable}
		if c.Type == TypeText {
			col.Size = textSize
		}
		if !t.AutoID && slices.Contains(t.Key, c.Name) {
			tbl.AddPrimary(col)
			continue
		}
		tbl.AddColumn(col)
	}
	for _, idx := range t.Indexes {
		name := t.Name + "_" + strings.Join(idx, "_")
		tbl.AddIndex(name, false, idx)
	}
	return tbl
}

// entTables converts every declared table for migration.
func entTables() []*schema.Table {
	out := make([]*schema.Table, 0, len(Tables))
	for i := range Tables {
		out = append(out, Tables[i].entTable())
	}
	return out
}
