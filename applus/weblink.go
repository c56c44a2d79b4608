package applus

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// MakeWebLink builds a link into the web client, base page plus query
// parameters. Nil parameter values are skipped; keys are emitted in
// sorted order so links are stable.
func (s *Server) MakeWebLink(base string, params map[string]any) (string, error) {
	root := s.webSettings.Normalized()
	if root == "" {
		return "", fmt.Errorf("applus: no web server base URL configured")
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(root)
	b.WriteString(base)
	for i, k := range keys {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(url.QueryEscape(fmt.Sprint(params[k])))
	}
	return b.String(), nil
}

// MakeWebLinkWauftrag links to a production order.
func (s *Server) MakeWebLinkWauftrag(params map[string]any) (string, error) {
	return s.MakeWebLink("wp/wauftragRec.aspx", params)
}

// MakeWebLinkWauftragPos links to a production order position.
func (s *Server) MakeWebLinkWauftragPos(params map[string]any) (string, error) {
	return s.MakeWebLink("wp/wauftragPosRec.aspx", params)
}

// MakeWebLinkBauftrag links to an operation.
func (s *Server) MakeWebLinkBauftrag(params map[string]any) (string, error) {
	return s.MakeWebLink("wp/bauftragRec.aspx", params)
}

// MakeWebLinkAuftrag links to a sales order.
func (s *Server) MakeWebLinkAuftrag(params map[string]any) (string, error) {
	return s.MakeWebLink("sales/auftragRec.aspx", params)
}

// MakeWebLinkVKRahmen links to a sales blanket order.
func (s *Server) MakeWebLinkVKRahmen(params map[string]any) (string, error) {
	return s.MakeWebLink("sales/vkrahmenRec.aspx", params)
}

// MakeWebLinkWarenausgang links to a goods issue.
func (s *Server) MakeWebLinkWarenausgang(params map[string]any) (string, error) {
	return s.MakeWebLink("sales/warenausgangRec.aspx", params)
}
