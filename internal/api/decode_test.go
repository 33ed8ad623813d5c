package api

import "testing"

func TestDecodePage(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantItems int
		wantTotal int
	}{
		{"bare", `[{"id":1,"title":"a"},{"id":2,"title":"b"}]`, 2, 2},
		{"bare empty", ` [] `, 0, 0},
		{"wrapped with total", `{"todos":[{"id":1}],"total":11}`, 1, 11},
		{"wrapped without total", `{"todos":[{"id":1},{"id":2},{"id":3}]}`, 3, 3},
		{"wrapped without todos", `{"other":true}`, 0, 0},
		{"null", `null`, 0, 0},
		{"string", `"text"`, 0, 0},
		{"number", `42`, 0, 0},
		{"no body", ``, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := decodePage([]byte(c.body))
			if err != nil {
				t.Fatalf("decodePage: %v", err)
			}
			if len(p.Items) != c.wantItems || p.TotalCount != c.wantTotal {
				t.Fatalf("got %d items / total %d, want %d / %d", len(p.Items), p.TotalCount, c.wantItems, c.wantTotal)
			}
			if p.Items == nil {
				t.Fatal("items must never be nil")
			}
		})
	}
}

func TestDecodePage_Rejects(t *testing.T) {
	for _, body := range []string{`[{"id":"x"}]`, `{"todos":`, `nul`, `<html>`} {
		if _, err := decodePage([]byte(body)); err == nil {
			t.Errorf("decodePage(%q): expected error", body)
		}
	}
}
