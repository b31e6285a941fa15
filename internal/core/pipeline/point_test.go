package pipeline

import (
	"encoding/json"
	"testing"
)

func TestPoint_DecodeFlexibleFields(t *testing.T) {
	raw := `[
		{"created_at":"2025-06-01T10:00:00","category":"вода","lat":55.8,"lon":48.5,"Всего":3,"Улица":"Ленина","Дом":12},
		{"created_at":"2025-06-02","category":"свет","lat":55.9,"lon":48.6,"Всего":"2,5","Улица":"Мира","Дом":"7а"},
		{"created_at":"2025-06-03","category":"газ","lat":55.7,"lon":48.4,"Всего":null,"Дом":null},
		{"created_at":"2025-06-04","category":"газ","lat":55.7,"lon":48.4}
	]`
	var pts []Point
	if err := json.Unmarshal([]byte(raw), &pts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pts[0].House != "12" || pts[0].Total != Num(3) {
		t.Fatalf("first: %+v", pts[0])
	}
	if pts[1].Total != Num(2.5) || pts[1].House != "7а" {
		t.Fatalf("second: %+v", pts[1])
	}
	if pts[2].Total.Valid || pts[2].House != "" || pts[2].Street != "" {
		t.Fatalf("third: %+v", pts[2])
	}
	if pts[3].Total.Valid {
		t.Fatalf("fourth should have no total: %+v", pts[3])
	}
}

func TestPoint_DecodeRejectsJunkTotal(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`{"Всего":"много"}`), &p); err == nil {
		t.Fatalf("expected error for non numeric total")
	}
	if err := json.Unmarshal([]byte(`{"Всего":true}`), &p); err == nil {
		t.Fatalf("expected error for boolean total")
	}
}

func TestPoint_Weight(t *testing.T) {
	cases := []struct {
		name  string
		total Number
		want  float64
	}{
		{"absent", Number{}, 1},
		{"zero", Num(0), 1},
		{"set", Num(4), 4},
		{"fraction", Num(0.5), 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (Point{Total: tc.total}).Weight(); got != tc.want {
				t.Fatalf("weight %v want %v", got, tc.want)
			}
		})
	}
}

func TestPoint_MarshalOmitsAbsentTotal(t *testing.T) {
	b, err := json.Marshal(Point{CreatedAt: "2025-06-01", Category: "A", House: "5"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if _, ok := m["Всего"]; ok {
		t.Fatalf("expected no Всего key, got %s", b)
	}
	b, _ = json.Marshal(Point{Total: Num(2)})
	_ = json.Unmarshal(b, &m)
	if m["Всего"] != float64(2) {
		t.Fatalf("expected Всего 2, got %s", b)
	}
}

func TestParseNumber(t *testing.T) {
	if n, err := ParseNumber(" 7 "); err != nil || n != Num(7) {
		t.Fatalf("got %v %v", n, err)
	}
	if n, err := ParseNumber(""); err != nil || n.Valid {
		t.Fatalf("blank should be absent, got %v %v", n, err)
	}
	if _, err := ParseNumber("x"); err == nil {
		t.Fatalf("expected error")
	}
	if s := Num(12).String(); s != "12" {
		t.Fatalf("string %q", s)
	}
}
