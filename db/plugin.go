package db

import (
	"context"

	"github.com/Thysk/rucio/filter/compile"
)

// Plugin is the consumer contract a compile.Query is produced for: a
// metadata store that can list entities matching a compiled filter, plus
// the surrounding metadata-management operations a real plugin needs.
// Shaped after the original DidMetaPlugin interface (get_metadata,
// set_metadata, list_dids, manages_key); dispatch across multiple
// plugins by key ownership is out of scope here, so there's exactly one
// implementation below instead of a registry.
type Plugin interface {
	// ListDIDs executes query and returns the (scope, name) pairs (plus
	// any additional projected columns) of every matching row.
	ListDIDs(ctx context.Context, query *compile.Query) ([]DID, error)
	// GetMetadata returns the raw key-value metadata for one DID.
	GetMetadata(ctx context.Context, scope, name string) (map[string]any, error)
	// SetMetadata stores a single key/value pair against a DID.
	SetMetadata(ctx context.Context, scope, name, key string, value any) error
	// ManagesKey reports whether this plugin is the store of record for
	// key (a non-reserved key backed by this plugin's JSON or key-value
	// table, as opposed to one owned by some other metadata plugin).
	ManagesKey(ctx context.Context, key string) (bool, error)
}

// DID is one result row: the (scope, name) pair plus whatever additional
// attributes the query requested.
type DID struct {
	Scope      string
	Name       string
	Additional []any
}

// SQLPlugin is the reference Plugin implementation: a single relational
// store reachable through a *sql.DB, with metadata split between the
// reserved dids columns and the did_meta_kv fallback table (entity.DIDs).
type SQLPlugin struct {
	Conn *Conn
}

func NewSQLPlugin(conn *Conn) *SQLPlugin {
	return &SQLPlugin{Conn: conn}
}

func (p *SQLPlugin) ListDIDs(ctx context.Context, query *compile.Query) ([]DID, error) {
	rows, err := p.Conn.DB.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []DID
	for rows.Next() {
		dest := make([]any, len(cols))
		dest[0] = new(string)
		dest[1] = new(string)
		for i := 2; i < len(cols); i++ {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		did := DID{Scope: *dest[0].(*string), Name: *dest[1].(*string)}
		for i := 2; i < len(cols); i++ {
			did.Additional = append(did.Additional, *dest[i].(*any))
		}
		out = append(out, did)
	}
	return out, rows.Err()
}

func (p *SQLPlugin) GetMetadata(ctx context.Context, scope, name string) (map[string]any, error) {
	rows, err := p.Conn.DB.QueryContext(ctx,
		`SELECT "key", "value" FROM did_meta_kv WHERE scope = `+p.Conn.Dialect.Placeholder(1)+` AND name = `+p.Conn.Dialect.Placeholder(2),
		scope, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := map[string]any{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func (p *SQLPlugin) SetMetadata(ctx context.Context, scope, name, key string, value any) error {
	_, err := p.Conn.DB.ExecContext(ctx,
		`INSERT INTO did_meta_kv (scope, name, "key", "value") VALUES (`+
			p.Conn.Dialect.Placeholder(1)+", "+p.Conn.Dialect.Placeholder(2)+", "+
			p.Conn.Dialect.Placeholder(3)+", "+p.Conn.Dialect.Placeholder(4)+")",
		scope, name, key, value)
	return err
}

func (p *SQLPlugin) ManagesKey(ctx context.Context, key string) (bool, error) {
	var count int
	err := p.Conn.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM did_meta_kv WHERE "key" = `+p.Conn.Dialect.Placeholder(1), key).
		Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ Plugin = (*SQLPlugin)(nil)
