// Package duplicate copies business objects together with their
// dependent objects: an article with its routing and bill of
// materials, a routing with its positions. Which fields are copied is
// driven by the object's XML definition; fields like ID or GUID are
// never copied.
package duplicate

import (
	"context"
	"strings"
	"sync"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/scripttool"
	"github.com/erptools/go-applus/sqlgen"
	"github.com/erptools/go-applus/usexml"
)

// Server is the part of the connection the duplication needs.
// *applus.Server implements it.
type Server interface {
	QueryAll(ctx context.Context, stmt db.Statement, args ...any) ([]db.RowMap, error)
	QueryColumn(ctx context.Context, stmt db.Statement, args ...any) ([]any, error)
	QuerySingleRow(ctx context.Context, stmt db.Statement, args ...any) (db.RowMap, error)
	TableFields(ctx context.Context, table string, isComputed *bool) (map[string]bool, error)
	XMLDefinition(ctx context.Context, obj string) (*scripttool.XMLDefinition, error)
	NewInsert(table string) *usexml.InsertRow
	NewUpsert(table string) *usexml.UpsertRow
}

// noCopyFields are maintained by the server and never copied.
var noCopyFields = sqlgen.NormalizeFieldSet(map[string]bool{
	"ID":          true,
	"ID_A":        true,
	"GUID":        true,
	"MANDANT":     true,
	"TIMESTAMP":   true,
	"TIMESTAMP_A": true,
	"INSDATE":     true,
	"INSUSER":     true,
	"UPDDATE":     true,
	"UPDUSER":     true,
})

// FieldsToCopyForTable determines the fields to copy for a table from
// its XML definition. An include list is used as is; otherwise all
// non-computed fields minus the exclude list are copied. Fields that
// must never be copied are removed in both cases.
func FieldsToCopyForTable(ctx context.Context, server Server, table string) (map[string]bool, error) {
	fields := map[string]bool{}
	exclude := true

	def, err := server.XMLDefinition(ctx, table)
	if err != nil {
		return nil, err
	}
	if def != nil {
		fields, exclude = def.Duplicate()
	}

	if !exclude {
		return subtract(fields, noCopyFields), nil
	}

	isComputed := false
	all, err := server.TableFields(ctx, table, &isComputed)
	if err != nil {
		return nil, err
	}
	return subtract(subtract(all, fields), noCopyFields), nil
}

func subtract(set, minus map[string]bool) map[string]bool {
	out := map[string]bool{}
	for f := range set {
		if !minus[f] {
			out[f] = true
		}
	}
	return out
}

// FieldsCache caches the fields to copy per table.
type FieldsCache struct {
	server Server

	mu    sync.Mutex
	cache map[string]map[string]bool
}

// NewFieldsCache creates an empty cache over the given server.
func NewFieldsCache(server Server) *FieldsCache {
	return &FieldsCache{server: server, cache: map[string]map[string]bool{}}
}

// FieldsToCopy returns the fields to copy for a table, computing them
// on first use.
func (c *FieldsCache) FieldsToCopy(ctx context.Context, table string) (map[string]bool, error) {
	table = strings.ToUpper(table)

	c.mu.Lock()
	fs, ok := c.cache[table]
	c.mu.Unlock()
	if ok {
		return fs, nil
	}

	fs, err := FieldsToCopyForTable(ctx, c.server, table)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache[table] = fs
	c.mu.Unlock()
	return fs, nil
}

func ensureCache(server Server, cache *FieldsCache) *FieldsCache {
	if cache == nil {
		return NewFieldsCache(server)
	}
	return cache
}
