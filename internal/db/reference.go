package db

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
)

// Record is a row of one of the reference tables.
type Record interface {
	table() string
	// columns excludes id; values and the tail of dest follow its order.
	columns() []string
	values() []any
	dest() []any
	validate() error
}

// List returns every row of T's table ordered by id, optionally narrowed
// by where.
func List[T any, P interface {
	*T
	Record
}](ctx context.Context, q *Queries, where sq.Sqlizer) ([]T, error) {
	var zero P = new(T)
	sel := q.sb.Select(append([]string{"id"}, zero.columns()...)...).
		From(zero.table()).
		OrderBy("id")
	if where != nil {
		sel = sel.Where(where)
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", zero.table(), err)
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", zero.table(), err)
	}
	defer rows.Close() //nolint:errcheck

	out := []T{}
	for rows.Next() {
		var row T
		if err := rows.Scan(P(&row).dest()...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", zero.table(), err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Get loads one row by id.
func Get[T any, P interface {
	*T
	Record
}](ctx context.Context, q *Queries, id int64) (T, error) {
	var row T
	p := P(&row)
	query, args, err := q.sb.Select(append([]string{"id"}, p.columns()...)...).
		From(p.table()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return row, fmt.Errorf("build get %s: %w", p.table(), err)
	}
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(p.dest()...); err != nil {
		return row, fmt.Errorf("get %s %d: %w", p.table(), id, mapError(err))
	}
	return row, nil
}

// Create validates and inserts row, then sets its id.
func Create[T any, P interface {
	*T
	Record
}](ctx context.Context, q *Queries, row *T) error {
	p := P(row)
	if err := p.validate(); err != nil {
		return err
	}
	query, args, err := q.sb.Insert(p.table()).
		Columns(p.columns()...).
		Values(p.values()...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", p.table(), err)
	}
	// dest()[0] is always the id.
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(p.dest()[0]); err != nil {
		return fmt.Errorf("insert %s: %w", p.table(), mapError(err))
	}
	return nil
}

// ListPackaging narrows packaging to names when it is non-empty.
func (q *Queries) ListPackaging(ctx context.Context, names []string) ([]Packaging, error) {
	if len(names) == 0 {
		return List[Packaging](ctx, q, nil)
	}
	return List[Packaging](ctx, q, sq.Eq{"name": names})
}

func requireName(name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "This field is required."}
	}
	return maxLen("name", name, max)
}

func maxLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("Ensure this field has no more than %d characters.", max)}
	}
	return nil
}

func (*Material) table() string { return "materials" }
func (*Material) columns() []string { return []string{"name"} }
func (m *Material) values() []any { return []any{m.Name} }
func (m *Material) dest() []any { return []any{&m.ID, &m.Name} }
func (m *Material) validate() error { return requireName(m.Name, 100) }

func (*Buyer) table() string { return "buyers" }
func (*Buyer) columns() []string { return []string{"name"} }
func (b *Buyer) values() []any { return []any{b.Name} }
func (b *Buyer) dest() []any { return []any{&b.ID, &b.Name} }
func (b *Buyer) validate() error { return requireName(b.Name, 100) }

func (*Packaging) table() string { return "packaging" }
func (*Packaging) columns() []string { return []string{"name"} }
func (p *Packaging) values() []any { return []any{p.Name} }
func (p *Packaging) dest() []any { return []any{&p.ID, &p.Name} }
func (p *Packaging) validate() error { return requireName(p.Name, 100) }

func (*TransportMode) table() string { return "transport_modes" }
func (*TransportMode) columns() []string { return []string{"name"} }
func (t *TransportMode) values() []any { return []any{t.Name} }
func (t *TransportMode) dest() []any { return []any{&t.ID, &t.Name} }
func (t *TransportMode) validate() error { return requireName(t.Name, 100) }

func (*DeliveryTerm) table() string { return "delivery_terms" }
func (*DeliveryTerm) columns() []string { return []string{"name", "description"} }
func (d *DeliveryTerm) values() []any { return []any{d.Name, d.Description} }
func (d *DeliveryTerm) dest() []any { return []any{&d.ID, &d.Name, &d.Description} }
func (d *DeliveryTerm) validate() error { return requireName(d.Name, 100) }

func (*DeliveryPoint) table() string { return "delivery_points" }
func (*DeliveryPoint) columns() []string { return []string{"name", "country"} }
func (d *DeliveryPoint) values() []any { return []any{d.Name, d.Country} }
func (d *DeliveryPoint) dest() []any { return []any{&d.ID, &d.Name, &d.Country} }
func (d *DeliveryPoint) validate() error {
	if err := requireName(d.Name, 100); err != nil {
		return err
	}
	if d.Country != nil {
		return maxLen("country", *d.Country, 100)
	}
	return nil
}

func (*PaymentMethod) table() string { return "payment_methods" }
func (*PaymentMethod) columns() []string { return []string{"name", "description"} }
func (p *PaymentMethod) values() []any { return []any{p.Name, p.Description} }
func (p *PaymentMethod) dest() []any { return []any{&p.ID, &p.Name, &p.Description} }
func (p *PaymentMethod) validate() error { return requireName(p.Name, 100) }

func (*TriggeringEvent) table() string { return "triggering_events" }
func (*TriggeringEvent) columns() []string { return []string{"name", "description"} }
func (t *TriggeringEvent) values() []any { return []any{t.Name, t.Description} }
func (t *TriggeringEvent) dest() []any { return []any{&t.ID, &t.Name, &t.Description} }
func (t *TriggeringEvent) validate() error { return requireName(t.Name, 100) }

func (*Currency) table() string { return "currencies" }
func (*Currency) columns() []string { return []string{"code", "name", "symbol"} }
func (c *Currency) values() []any { return []any{c.Code, c.Name, c.Symbol} }
func (c *Currency) dest() []any { return []any{&c.ID, &c.Code, &c.Name, &c.Symbol} }
func (c *Currency) validate() error {
	if err := requireName(c.Name, 50); err != nil {
		return err
	}
	if strings.TrimSpace(c.Code) == "" {
		return &ValidationError{Field: "code", Message: "This field is required."}
	}
	if err := maxLen("code", c.Code, 3); err != nil {
		return err
	}
	return maxLen("symbol", c.Symbol, 5)
}

func (*Surveyor) table() string { return "surveyors" }
func (*Surveyor) columns() []string { return []string{"name", "company", "contact_info"} }
func (s *Surveyor) values() []any { return []any{s.Name, s.Company, s.ContactInfo} }
func (s *Surveyor) dest() []any { return []any{&s.ID, &s.Name, &s.Company, &s.ContactInfo} }
func (s *Surveyor) validate() error {
	if err := requireName(s.Name, 100); err != nil {
		return err
	}
	if strings.TrimSpace(s.Company) == "" {
		return &ValidationError{Field: "company", Message: "This field is required."}
	}
	return maxLen("company", s.Company, 100)
}
