// Package testutil holds an in-memory record gateway for tests.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
)

// FakeGateway keeps the flat record collection in memory, in insertion
// order. Failures can be injected per action.
type FakeGateway struct {
	mu       sync.Mutex
	records  []map[string]string
	failures map[string]error
	calls    map[string]int
	uploads  map[string][]byte
}

func NewFakeGateway(seed ...types.Record) *FakeGateway {
	g := &FakeGateway{
		failures: make(map[string]error),
		calls:    make(map[string]int),
		uploads:  make(map[string][]byte),
	}
	g.Seed(seed...)
	return g
}

// Seed stores records as they are, without counting a call.
func (g *FakeGateway) Seed(records ...types.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range records {
		fields, err := types.RecordFields(r)
		if err != nil {
			panic(err)
		}
		g.records = append(g.records, fields)
	}
}

// SeedFields stores raw wire fields, for records a real gateway could hold
// but the typed model would not produce.
func (g *FakeGateway) SeedFields(fields ...map[string]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, fields...)
}

// Fail makes every call of action fail with err until Fail(action, nil).
func (g *FakeGateway) Fail(action string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		delete(g.failures, action)
		return
	}
	g.failures[action] = err
}

func (g *FakeGateway) Calls(action string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[action]
}

// Fields returns a copy of the stored fields of the record keyed id.
func (g *FakeGateway) Fields(sheet types.SheetType, id string) (map[string]string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.index(sheet, id)
	if i < 0 {
		return nil, false
	}
	return copyFields(g.records[i]), true
}

// Count returns how many stored records belong to sheet.
func (g *FakeGateway) Count(sheet types.SheetType) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, r := range g.records {
		if r[types.FieldSheetType] == string(sheet) {
			n++
		}
	}
	return n
}

func (g *FakeGateway) Upload(filename string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.uploads[filename]
	return data, ok
}

func (g *FakeGateway) begin(action string) error {
	g.calls[action]++
	if err := g.failures[action]; err != nil {
		return types.NewGatewayError(action, err)
	}
	return nil
}

func (g *FakeGateway) FetchAll(ctx context.Context) ([]types.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.begin("getAll"); err != nil {
		return nil, err
	}

	out := make([]types.Record, 0, len(g.records))
	for _, fields := range g.records {
		r, err := types.DecodeRecord(copyFields(fields))
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (g *FakeGateway) Create(ctx context.Context, record types.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.begin("create"); err != nil {
		return err
	}

	fields, err := types.RecordFields(record)
	if err != nil {
		return types.NewGatewayError("create", err)
	}
	g.records = append(g.records, fields)
	return nil
}

func (g *FakeGateway) Update(ctx context.Context, record types.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.begin("update"); err != nil {
		return err
	}

	fields, err := types.RecordFields(record)
	if err != nil {
		return types.NewGatewayError("update", err)
	}

	i := g.index(record.Sheet(), record.RecordID())
	if i < 0 {
		return types.NewGatewayError("update", errors.New("record not found"))
	}
	g.records[i] = fields
	return nil
}

func (g *FakeGateway) Delete(ctx context.Context, idValue string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.begin("delete"); err != nil {
		return err
	}

	for i, r := range g.records {
		sheet := types.SheetType(r[types.FieldSheetType])
		if r[sheet.KeyField()] == idValue {
			g.records = append(g.records[:i], g.records[i+1:]...)
			return nil
		}
	}
	return types.NewGatewayError("delete", errors.New("record not found"))
}

func (g *FakeGateway) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.begin("uploadImage"); err != nil {
		return "", err
	}

	g.uploads[filename] = data
	return "https://images.example.test/" + filename, nil
}

func (g *FakeGateway) index(sheet types.SheetType, id string) int {
	for i, r := range g.records {
		if r[types.FieldSheetType] == string(sheet) && r[sheet.KeyField()] == id {
			return i
		}
	}
	return -1
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Handler serves the gateway wire protocol on top of g.
func (g *FakeGateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()

		if r.Method == http.MethodGet {
			if r.URL.Query().Get("action") != "getAll" {
				writeReply(w, map[string]any{"result": "ERROR", "error": "unknown action"})
				return
			}

			records, err := g.FetchAll(ctx)
			if err != nil {
				writeReply(w, map[string]any{"result": "ERROR", "error": err.Error()})
				return
			}

			data := make([]map[string]string, 0, len(records))
			for _, rec := range records {
				fields, _ := types.RecordFields(rec)
				data = append(data, fields)
			}
			writeReply(w, map[string]any{"result": "OK", "data": data})
			return
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Action   string            `json:"action"`
			Record   map[string]string `json:"record"`
			Filename string            `json:"filename"`
			Base64   string            `json:"base64"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var err error
		switch req.Action {
		case "create", "update":
			var record types.Record
			record, err = types.DecodeRecord(req.Record)
			if err == nil {
				if req.Action == "create" {
					err = g.Create(ctx, record)
				} else {
					err = g.Update(ctx, record)
				}
			}
		case "delete":
			err = g.Delete(ctx, req.Record[types.FieldIDValue])
		case "uploadImage":
			var url string
			url, err = g.UploadImage(ctx, req.Filename, []byte(req.Base64))
			if err == nil {
				writeReply(w, map[string]any{"result": "OK", "url": url})
				return
			}
		default:
			err = fmt.Errorf("unknown action %q", req.Action)
		}

		if err != nil {
			writeReply(w, map[string]any{"result": "ERROR", "error": err.Error()})
			return
		}
		writeReply(w, map[string]any{"result": "OK"})
	})
}

func writeReply(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

// Logger returns a logger that writes nowhere.
func Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
