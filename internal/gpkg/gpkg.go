package gpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/geoinnova/projectreport/internal/model"
)

// File is a GeoPackage opened read-only.
type File struct {
	db *sql.DB
}

// Open opens the GeoPackage at path without ever creating or modifying it.
func Open(path string) (*File, error) {
	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open geopackage %s: %w", path, err)
	}
	return &File{db: db}, nil
}

// Close closes the underlying connection.
func (f *File) Close() error {
	return f.db.Close()
}

// TableInfo is the schema and statistics of one GeoPackage table.
type TableInfo struct {
	Table string

	// GeometryColumn is empty for attribute-only tables.
	GeometryColumn string
	Geometry       model.GeometryType

	// Fields lists the attribute columns in table order. The geometry
	// column is not included.
	Fields []model.Field

	FeatureCount int64
}

// DefaultTable returns the first feature table registered in gpkg_contents.
func (f *File) DefaultTable(ctx context.Context) (string, error) {
	var name string
	err := f.db.QueryRowContext(ctx,
		`SELECT table_name FROM gpkg_contents WHERE data_type = 'features' ORDER BY rowid LIMIT 1`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoFeatureTable
	}
	if err != nil {
		return "", fmt.Errorf("query gpkg_contents: %w", err)
	}
	return name, nil
}

// Inspect reads the schema, geometry type and row count of a table.
func (f *File) Inspect(ctx context.Context, table string) (*TableInfo, error) {
	info := &TableInfo{Table: table, Geometry: model.GeometryNull}

	if err := f.readGeometryColumn(ctx, info); err != nil {
		return nil, err
	}
	if err := f.readColumns(ctx, info); err != nil {
		return nil, err
	}
	if len(info.Fields) == 0 && info.GeometryColumn == "" {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if err := f.readDataColumns(ctx, info); err != nil {
		return nil, err
	}

	if err := f.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&info.FeatureCount); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	return info, nil
}

func (f *File) readGeometryColumn(ctx context.Context, info *TableInfo) error {
	var column, geometryType string
	err := f.db.QueryRowContext(ctx,
		`SELECT column_name, geometry_type_name FROM gpkg_geometry_columns WHERE table_name = ?`,
		info.Table,
	).Scan(&column, &geometryType)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("query gpkg_geometry_columns: %w", err)
	}
	info.GeometryColumn = column
	info.Geometry = model.ParseGeometryType(geometryType)
	return nil
}

func (f *File) readColumns(ctx context.Context, info *TableInfo) error {
	rows, err := f.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(info.Table)+")")
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", info.Table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declType   string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &defaultValue, &pk); err != nil {
			return fmt.Errorf("read columns of %s: %w", info.Table, err)
		}
		if strings.EqualFold(name, info.GeometryColumn) {
			continue
		}
		info.Fields = append(info.Fields, columnField(name, declType))
	}
	return rows.Err()
}

// readDataColumns applies the optional gpkg_data_columns extension table.
// The title is preferred as alias, then the human-readable name when it
// differs from the column name. The description becomes the comment.
func (f *File) readDataColumns(ctx context.Context, info *TableInfo) error {
	var exists int
	err := f.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_data_columns'`,
	).Scan(&exists)
	if err != nil || exists == 0 {
		return err
	}

	rows, err := f.db.QueryContext(ctx,
		`SELECT column_name, name, title, description FROM gpkg_data_columns WHERE table_name = ?`,
		info.Table,
	)
	if err != nil {
		return fmt.Errorf("query gpkg_data_columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			column                   string
			name, title, description sql.NullString
		)
		if err := rows.Scan(&column, &name, &title, &description); err != nil {
			return fmt.Errorf("query gpkg_data_columns: %w", err)
		}
		for i := range info.Fields {
			if info.Fields[i].Name != column {
				continue
			}
			switch {
			case title.String != "":
				info.Fields[i].Alias = title.String
			case name.String != "" && name.String != column:
				info.Fields[i].Alias = name.String
			}
			info.Fields[i].Comment = description.String
		}
	}
	return rows.Err()
}

var declaredLength = regexp.MustCompile(`^\s*([A-Za-z]+)\s*(?:\(\s*(\d+)\s*\))?\s*$`)

// columnField maps a declared GeoPackage column type to the field type the
// OGR provider reports for it.
func columnField(name, declType string) model.Field {
	field := model.Field{Name: name}

	base := strings.ToUpper(strings.TrimSpace(declType))
	if m := declaredLength.FindStringSubmatch(declType); m != nil {
		base = strings.ToUpper(m[1])
		if m[2] != "" {
			field.Length, _ = strconv.Atoi(m[2])
		}
	}

	switch base {
	case "BOOLEAN":
		field.TypeName, field.Type = "Boolean", model.VariantBool
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT":
		field.TypeName, field.Type = "Integer", model.VariantInt
	case "INTEGER":
		field.TypeName, field.Type = "Integer64", model.VariantLongLong
	case "FLOAT", "DOUBLE", "REAL":
		field.TypeName, field.Type = "Real", model.VariantDouble
	case "TEXT":
		field.TypeName, field.Type = "String", model.VariantString
	case "DATE":
		field.TypeName, field.Type = "Date", model.VariantDate
	case "DATETIME":
		field.TypeName, field.Type = "DateTime", model.VariantDateTime
	case "BLOB":
		field.TypeName, field.Type = "Binary", model.VariantByteArray
	default:
		field.TypeName, field.Type = declType, model.VariantString
	}
	return field
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
