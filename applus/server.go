// Package applus ties the database and the app server together into
// one connection object. Queries built with sqlgen are sent to the app
// server for completion (adding client and permission filters) before
// they run against the database, and writes go through useXML rows so
// the server applies its usual checks.
package applus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	gosoap "github.com/hooklift/gowsdl/soap"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/job"
	"github.com/erptools/go-applus/scripttool"
	"github.com/erptools/go-applus/soap"
	"github.com/erptools/go-applus/sqlgen"
	"github.com/erptools/go-applus/sysconf"
	"github.com/erptools/go-applus/usexml"
)

// appClients hands out one SOAP client per app server endpoint.
// *soap.Connection is the production implementation.
type appClients interface {
	Client(pkg, name string) soap.Caller
}

// Server is a connection to the database and the app server, with the
// service wrappers the module offers hanging off it.
type Server struct {
	dbSettings  db.Settings
	appSettings soap.AppServerSettings
	webSettings soap.WebServerSettings

	conn    *sql.DB
	appConn appClients

	// SysConf reads system configuration values.
	SysConf *sysconf.SysConf

	// Job drives server-side jobs.
	Job *job.Client

	// ScriptTool exposes the script tool service.
	ScriptTool *scripttool.ScriptTool

	mu         sync.Mutex
	webClients map[string]soap.Caller
}

// NewServer connects to the database and prepares the app server
// connection. SOAP endpoints are contacted lazily.
func NewServer(dbSettings db.Settings, appSettings soap.AppServerSettings, webSettings soap.WebServerSettings) (*Server, error) {
	conn, err := dbSettings.Connect()
	if err != nil {
		return nil, err
	}
	appConn := soap.NewConnection(appSettings)
	s := &Server{
		dbSettings:  dbSettings,
		appSettings: appSettings,
		webSettings: webSettings,
		conn:        conn,
		appConn:     appConn,
		webClients:  map[string]soap.Caller{},
	}
	s.SysConf = sysconf.New(appConn.Client("p2system", "SysConf"))
	s.Job = job.New(appConn.Client("p2core", "Job"))
	s.ScriptTool = scripttool.New(appConn.Client("p2script", "ScriptTool"))
	return s, nil
}

// Close closes the database connection.
func (s *Server) Close() error { return s.conn.Close() }

// DB exposes the raw connection pool, for transactions and for queries
// that must not be completed by the app server.
func (s *Server) DB() *sql.DB { return s.conn }

// AppClient returns the SOAP client for an app server endpoint, e.g.
// AppClient("p2core", "Table").
func (s *Server) AppClient(pkg, name string) soap.Caller {
	return s.appConn.Client(pkg, name)
}

// WebClient returns a SOAP client for an ASMX page of the web server,
// addressed by its relative URL such as "masterdata/artikel.asmx".
// The app client is preferred when an endpoint exists on both servers.
func (s *Server) WebClient(relURL string) (soap.Caller, error) {
	base := s.webSettings.Normalized()
	if base == "" {
		return nil, fmt.Errorf("applus: no web server base URL configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.webClients[relURL]; ok {
		return c, nil
	}
	c := gosoap.NewClient(base + relURL)
	s.webClients[relURL] = c
	return c, nil
}

// CompleteSQL sends a statement to the app server for completion,
// which adds client filters and the like.
func (s *Server) CompleteSQL(ctx context.Context, stmt db.Statement) (string, error) {
	raw, err := stmt.SQL()
	if err != nil {
		return "", err
	}
	completed, err := soap.CallString(ctx, s.AppClient("p2core", "Table"), "getCompleteSQL", raw)
	if err != nil {
		return "", err
	}
	return completed, nil
}

// QueryAll completes the statement and returns every row.
func (s *Server) QueryAll(ctx context.Context, stmt db.Statement, args ...any) ([]db.RowMap, error) {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return db.QueryAll(ctx, s.conn, db.Raw(c), args...)
}

// Query completes the statement and calls f once per row.
func (s *Server) Query(ctx context.Context, stmt db.Statement, f func(db.RowMap) error, args ...any) error {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return err
	}
	return db.Query(ctx, s.conn, db.Raw(c), f, args...)
}

// QueryColumn completes the statement and returns the first column of
// every row.
func (s *Server) QueryColumn(ctx context.Context, stmt db.Statement, args ...any) ([]any, error) {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return db.QueryColumn(ctx, s.conn, db.Raw(c), args...)
}

// QuerySingleRow completes the statement and returns its single row,
// or nil when the result is empty.
func (s *Server) QuerySingleRow(ctx context.Context, stmt db.Statement, args ...any) (db.RowMap, error) {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return db.QuerySingleRow(ctx, s.conn, db.Raw(c), args...)
}

// QuerySingleValue completes the statement and returns its single
// value, or nil when the result is empty.
func (s *Server) QuerySingleValue(ctx context.Context, stmt db.Statement, args ...any) (any, error) {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return db.QuerySingleValue(ctx, s.conn, db.Raw(c), args...)
}

// Execute completes and runs a statement that returns no rows.
func (s *Server) Execute(ctx context.Context, stmt db.Statement, args ...any) (int64, error) {
	c, err := s.CompleteSQL(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return db.Execute(ctx, s.conn, db.Raw(c), args...)
}

// IsTableKnown reports whether the database knows a table of the given
// name.
func (s *Server) IsTableKnown(ctx context.Context, table string) (bool, error) {
	v, err := s.QuerySingleValue(ctx, db.Raw("select count(*) from SYS.TABLES T where T.NAME=?"), table)
	if err != nil {
		return false, err
	}
	switch n := v.(type) {
	case int64:
		return n > 0, nil
	case int:
		return n > 0, nil
	case float64:
		return n > 0, nil
	default:
		return false, nil
	}
}

// TableFields returns the normalized names of a table's fields.
// isComputed restricts the result to computed (true) or plain (false)
// columns; nil returns both.
func (s *Server) TableFields(ctx context.Context, table string, isComputed *bool) (map[string]bool, error) {
	stmt := sqlgen.NewSelect("SYS.TABLES T", "C.NAME")
	j := stmt.AddInnerJoin("SYS.COLUMNS C")
	j.On.AddFieldsEq("T.Object_ID", "C.Object_ID")
	if isComputed != nil {
		j.On.AddFieldEq("c.is_computed", *isComputed)
	}
	stmt.Where.AddFieldEq("t.name", sqlgen.Param{})

	names, err := s.QueryColumn(ctx, stmt, table)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(names))
	for _, n := range names {
		if name, ok := n.(string); ok {
			fields[sqlgen.NormalizeField(name)] = true
		}
	}
	return fields, nil
}

// UniqueFieldsOfTable returns the table's unique indexes, grouped by
// index name. The lookup runs against the system catalog and is not
// completed.
func (s *Server) UniqueFieldsOfTable(ctx context.Context, table string) (map[string][]string, error) {
	return db.UniqueFieldsOfTable(ctx, s.conn, table)
}

// UseXML submits a row document to p2core/XML.
func (s *Server) UseXML(ctx context.Context, doc string) (string, error) {
	return soap.CallString(ctx, s.AppClient("p2core", "XML"), "useXML", doc)
}

// Mandant returns the ID of the current client.
func (s *Server) Mandant(ctx context.Context) (string, error) {
	return s.ScriptTool.Mandant(ctx)
}

// XMLDefinition loads the XML definition of a business object for the
// default client.
func (s *Server) XMLDefinition(ctx context.Context, obj string) (*scripttool.XMLDefinition, error) {
	return s.ScriptTool.XMLDefinition(ctx, obj, "")
}

// NewInsert creates a useXML insert row for a table.
func (s *Server) NewInsert(table string) *usexml.InsertRow {
	return usexml.NewInsert(s, table)
}

// NewUpdate creates a useXML update row for a record.
func (s *Server) NewUpdate(ctx context.Context, table string, id int64) (*usexml.UpdateRow, error) {
	return usexml.NewUpdate(ctx, s, table, id, nil)
}

// NewUpsert creates a useXML insert-or-update row for a table.
func (s *Server) NewUpsert(table string) *usexml.UpsertRow {
	return usexml.NewUpsert(s, table)
}

// Delete removes a record via useXML.
func (s *Server) Delete(ctx context.Context, table string, id int64) error {
	row, err := usexml.NewDelete(ctx, s, table, id, nil)
	if err != nil {
		return err
	}
	return row.Delete(ctx)
}

// NextNumber draws the next free number for a business object, e.g.
// the next order number.
func (s *Server) NextNumber(ctx context.Context, obj string) (string, error) {
	return soap.CallString(ctx, s.AppClient("p2system", "Nummer"), "nextNumber", obj)
}

var _ usexml.Executor = (*Server)(nil)

// noFailedCommands is the answer the adapt service gives when every
// command went through.
const noFailedCommands = "Folgende Befehle konnten nicht ausgeführt werden:\n\n"

// UpdateDatabase runs a database adaptation file through the
// p2dbtools/AdaptDB service and returns its report, empty when all
// commands succeeded.
func (s *Server) UpdateDatabase(ctx context.Context, file string) (string, error) {
	jobID, err := s.Job.CreateSOAPJob(ctx, "run DBAnpass "+file)
	if err != nil {
		return "", err
	}
	if err := soap.CallVoid(ctx, s.AppClient("p2dbtools", "AdaptDB"), "updateDatabase", jobID, "de", file); err != nil {
		return "", err
	}
	res, ok, err := s.Job.ResultURLString(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("applus: update database %s: job %s returned no result", file, jobID)
	}
	if res == noFailedCommands {
		return "", nil
	}
	return res, nil
}

// ImportUdfsAndViews imports views and user-defined functions into an
// environment via the p2dbtools/AdaptDB service.
func (s *Server) ImportUdfsAndViews(ctx context.Context, environment string, views, udfs []string) (string, error) {
	files, err := importFileList(views, udfs)
	if err != nil {
		return "", err
	}

	jobID, err := s.Job.CreateSOAPJob(ctx, "importing UDFs and Views")
	if err != nil {
		return "", err
	}
	if err := soap.CallVoid(ctx, s.AppClient("p2dbtools", "AdaptDB"), "importUdfsAndViews", jobID, environment, false, files, "de"); err != nil {
		return "", err
	}
	res, ok, err := s.Job.ResultURLString(ctx, jobID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("applus: import into %s: job %s returned no result", environment, jobID)
	}
	return res, nil
}

type importFile struct {
	Type int    `json:"type"`
	Name string `json:"name"`
}

// importFileList renders the JSON file list the adapt service expects,
// views as type 1 and UDFs as type 0.
func importFileList(views, udfs []string) (string, error) {
	files := make([]importFile, 0, len(views)+len(udfs))
	for _, v := range views {
		files = append(files, importFile{Type: 1, Name: v})
	}
	for _, u := range udfs {
		files = append(files, importFile{Type: 0, Name: u})
	}
	b, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
