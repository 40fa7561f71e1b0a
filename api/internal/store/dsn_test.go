package store

import "testing"

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveDSN(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"none", nil, ""},
		{"database url wins", map[string]string{"DATABASE_URL": " postgres://a@h/db ", "PGHOST": "x"}, "postgres://a@h/db"},
		{"parts", map[string]string{"PGHOST": "pg", "POSTGRES_PASSWORD": "p@ss"}, "postgres://tutor:p%40ss@pg:5432/tutor?sslmode=disable"},
		{"db only", map[string]string{"POSTGRES_DB": "school", "PGPORT": "6543"}, "postgres://tutor:@db:6543/school?sslmode=disable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDSN(envMap(tc.env)); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSafeDSNSummary(t *testing.T) {
	got := SafeDSNSummary("postgres://tutor:secret@pg:5432/school?sslmode=disable")
	if got != "host=pg port=5432 db=school user=tutor" {
		t.Errorf("got %q", got)
	}
	if got := SafeDSNSummary("postgres://tutor:secret@pg/school"); got != "host=pg db=school user=tutor" {
		t.Errorf("got %q", got)
	}
	if got := SafeDSNSummary("::"); got != "dsn: parse error" {
		t.Errorf("got %q", got)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-1: 5, 0: 5, 3: 3, 50: 50, 500: 50} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
