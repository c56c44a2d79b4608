// Package scripttool wraps the p2script/ScriptTool service: current
// date and user, install paths, client (Mandant) properties, object
// XML definitions and server info.
package scripttool

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/hashicorp/go-version"

	"github.com/erptools/go-applus/soap"
)

// ScriptTool wraps the p2script/ScriptTool service.
type ScriptTool struct {
	caller soap.Caller
}

// New creates a ScriptTool over the given p2script/ScriptTool caller.
func New(caller soap.Caller) *ScriptTool {
	return &ScriptTool{caller: caller}
}

// CurrentDate returns the server's current date.
func (s *ScriptTool) CurrentDate(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getCurrentDate")
}

// CurrentTime returns the server's current time.
func (s *ScriptTool) CurrentTime(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getCurrentTime")
}

// CurrentDateTime returns the server's current date and time.
func (s *ScriptTool) CurrentDateTime(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getCurrentDateTime")
}

// LoginName returns the login name of the connected user.
func (s *ScriptTool) LoginName(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getLoginName")
}

// UserName returns the user name of the connected user.
func (s *ScriptTool) UserName(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getUserName")
}

// UserFullName returns the full name of the connected user.
func (s *ScriptTool) UserFullName(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getUserFullName")
}

// SystemName returns the name of the system.
func (s *ScriptTool) SystemName(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getSystemName")
}

// InstallPath returns the app server's installation path.
func (s *ScriptTool) InstallPath(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getInstallPath")
}

// InstallPathWebServer derives the web server's installation path from
// the app server's, its sibling directory "WebServer".
func (s *ScriptTool) InstallPathWebServer(ctx context.Context) (string, error) {
	p, err := s.InstallPath(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "WebServer"), nil
}

// Mandant returns the ID of the current client.
func (s *ScriptTool) Mandant(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getCurrentClientProperty", "MANDANTID")
}

// MandantName returns the name of the current client.
func (s *ScriptTool) MandantName(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getCurrentClientProperty", "NAME")
}

// XMLDefinitionString loads the XML definition of a business object
// ("Artikel" loads ArtikelDefinition.xml) as a string. The server
// answers with an empty object node even when no definition file
// exists; definitions found on disk additionally carry an md5 node.
// An empty mandant selects the default client.
func (s *ScriptTool) XMLDefinitionString(ctx context.Context, obj, mandant string) (string, error) {
	return soap.CallString(ctx, s.caller, "getXMLDefinition2", obj, mandant)
}

// XMLDefinition loads and parses the XML definition of a business
// object. It returns nil without error when the server has no
// definition file for the object.
func (s *ScriptTool) XMLDefinition(ctx context.Context, obj, mandant string) (*XMLDefinition, error) {
	raw, err := s.XMLDefinitionString(ctx, obj, mandant)
	if err != nil {
		return nil, err
	}
	return parseXMLDefinition(raw)
}

// ServerInfoString returns the server info XML document as a string.
func (s *ScriptTool) ServerInfoString(ctx context.Context) (string, error) {
	return soap.CallString(ctx, s.caller, "getP2plusServerInfo")
}

// ServerInfo returns the parsed server info document.
func (s *ScriptTool) ServerInfo(ctx context.Context) (*etree.Document, error) {
	raw, err := s.ServerInfoString(ctx)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, fmt.Errorf("scripttool: parse server info: %w", err)
	}
	return doc, nil
}

// ServerVersion extracts the server version from the server info
// document, taken from the root's version attribute or a version child
// element.
func (s *ScriptTool) ServerVersion(ctx context.Context) (*version.Version, error) {
	doc, err := s.ServerInfo(ctx)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("scripttool: server info has no root element")
	}
	raw := root.SelectAttrValue("version", "")
	if raw == "" {
		if el := root.FindElement("version"); el != nil {
			raw = el.Text()
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("scripttool: server info carries no version")
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("scripttool: parse server version %q: %w", raw, err)
	}
	return v, nil
}
