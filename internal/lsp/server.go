package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/cfn-community/cfn-dev-tools/internal/analysis"
	"github.com/cfn-community/cfn-dev-tools/internal/config"
	"github.com/cfn-community/cfn-dev-tools/internal/logger"
	"github.com/cfn-community/cfn-dev-tools/internal/schema"
	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

type JSONRPCMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
}

// Server analyzes template documents on open/change/save and publishes the
// full diagnostic list each time. The documents map is the per-document
// registry: entries are replaced on recompute and deleted on close.
type Server struct {
	analyzer  *analysis.Analyzer
	schema    *schema.Schema
	out       io.Writer
	documents map[protocol.DocumentURI]string
}

func NewServer(cfg config.Config) *Server {
	s := &Server{
		analyzer:  analysis.NewAnalyzer(cfg.AnalyzerOptions()),
		out:       os.Stdout,
		documents: make(map[protocol.DocumentURI]string),
	}
	if !cfg.Analysis.DisableSkeletonCheck {
		sch, err := schema.Load()
		if err != nil {
			logger.Printf("skeleton schema unavailable: %v", err)
		} else {
			s.schema = sch
		}
	}
	return s
}

func (s *Server) Run(in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		msg, err := readMessage(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			logger.Printf("Error reading message: %v", err)
			continue
		}
		if done := s.handleMessage(msg); done {
			return nil
		}
	}
}

func readMessage(reader *bufio.Reader) (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}

	var msg JSONRPCMessage
	err := json.Unmarshal(body, &msg)
	return &msg, err
}

func (s *Server) handleMessage(msg *JSONRPCMessage) bool {
	switch msg.Method {
	case "initialize":
		s.respond(msg.ID, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync": 1, // Full sync
			},
		})
	case "initialized":
		// Do nothing
	case "shutdown":
		s.respond(msg.ID, nil)
	case "exit":
		return true
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.handleDidOpen(params)
		}
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.handleDidChange(params)
		}
	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.handleDidSave(params)
		}
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.handleDidClose(params)
		}
	}
	return false
}

func (s *Server) handleDidOpen(params protocol.DidOpenTextDocumentParams) {
	s.documents[params.TextDocument.URI] = params.TextDocument.Text
	s.analyze(params.TextDocument.URI)
}

func (s *Server) handleDidChange(params protocol.DidChangeTextDocumentParams) {
	if len(params.ContentChanges) == 0 {
		return
	}
	// Full sync: the last change carries the whole document.
	s.documents[params.TextDocument.URI] = params.ContentChanges[len(params.ContentChanges)-1].Text
	s.analyze(params.TextDocument.URI)
}

func (s *Server) handleDidSave(params protocol.DidSaveTextDocumentParams) {
	if params.Text != "" {
		s.documents[params.TextDocument.URI] = params.Text
	}
	s.analyze(params.TextDocument.URI)
}

func (s *Server) handleDidClose(params protocol.DidCloseTextDocumentParams) {
	delete(s.documents, params.TextDocument.URI)
	s.publish(params.TextDocument.URI, nil)
}

// analyze runs one full pass over the stored document text and publishes the
// complete result. A root parse failure clears the document's diagnostics and
// is logged; a broken document cannot be analyzed at all.
func (s *Server) analyze(docURI protocol.DocumentURI) {
	text, ok := s.documents[docURI]
	if !ok {
		return
	}
	path := uriFilename(docURI)

	doc, err := template.Parse([]byte(text), path)
	if err != nil {
		logger.Printf("%v", err)
		s.publish(docURI, nil)
		return
	}

	diags := s.analyzer.AnalyzeDocument(doc)
	if s.schema != nil {
		diags = append(diags, s.schema.Check(doc)...)
	}
	s.publish(docURI, diags)
}

func (s *Server) publish(docURI protocol.DocumentURI, diags []analysis.Diagnostic) {
	params := protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: toProtocol(diags),
	}
	s.notify("textDocument/publishDiagnostics", params)
}

func toProtocol(diags []analysis.Diagnostic) []protocol.Diagnostic {
	// The protocol requires an array, never null.
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := protocol.DiagnosticSeverityError
		if d.Level == analysis.LevelWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(d.Range.Start.Line), Character: uint32(d.Range.Start.Column)},
				End:   protocol.Position{Line: uint32(d.Range.End.Line), Character: uint32(d.Range.End.Column)},
			},
			Severity: severity,
			Source:   "cfndt",
			Message:  d.Message,
		})
	}
	return out
}

// uriFilename converts a document URI into a filesystem path. Editors send
// file:// URIs; anything else passes through as-is.
func uriFilename(u uri.URI) string {
	if strings.HasPrefix(string(u), "file://") {
		return u.Filename()
	}
	return string(u)
}

func (s *Server) respond(id any, result any) {
	s.send(JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) notify(method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		logger.Printf("Error encoding %s params: %v", method, err)
		return
	}
	s.send(JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
	})
}

func (s *Server) send(msg JSONRPCMessage) {
	body, _ := json.Marshal(msg)
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(body), body)
}
