package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// CreateIndex issues FT.CREATE ... ON JSON for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// AlterIndex extends an existing index with one FT.ALTER per field.
// Attributes the index already has are left alone.
func (s *Store) AlterIndex(ctx context.Context, name string, fields []db.IndexField) error {
	if name == "" {
		return errors.New("index name is required")
	}
	for i := range fields {
		attr, err := fieldArgs(&fields[i])
		if err != nil {
			return err
		}
		args := append([]string{name, "SCHEMA", "ADD"}, attr...)
		cmd := s.b().Arbitrary("FT.ALTER").Args(args...).Build()
		err = s.do(ctx, cmd).Error()
		switch {
		case err == nil, isRedisErr(err, "duplicate"):
		case isRedisErr(err, "unknown index name", "no such index"):
			return db.ErrIndexNotFound
		default:
			return &db.Error{Op: db.OpAlterIndex, Err: err}
		}
	}
	return nil
}

func createArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", "JSON"}
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range def.Fields {
		attr, err := fieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, attr...)
	}
	return args, nil
}

func fieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric, db.IndexFieldTag:
		args = append(args, f.Type.String())
	case db.IndexFieldText:
		if f.Weight < 0 {
			return nil, errors.New("text weight must not be negative")
		}
		args = append(args, f.Type.String())
		if f.Weight > 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
		}
	default:
		return nil, errors.New("unknown field type")
	}
	return args, nil
}
