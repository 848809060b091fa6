package postgres

import "testing"

// TestBuildSQL verifies statement shape and identifier quoting without a
// database: quoting is the part worth pinning because tables and columns
// come from user flags.
func TestBuildSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			"sample",
			buildSampleSQL("clinical_trials", 5),
			`SELECT * FROM "clinical_trials" LIMIT 5`,
		},
		{
			"count null",
			buildCountNullSQL("clinical_trials", "title"),
			`SELECT COUNT(*) FROM "clinical_trials" WHERE "title" IS NULL`,
		},
		{
			"count empty",
			buildCountEmptySQL("t", "conditions"),
			`SELECT COUNT(*) FROM "t" WHERE ("conditions")::text IN ('{}', '[]', '')`,
		},
		{
			"value counts",
			buildValueCountsSQL("t", "status", 10000),
			`SELECT ("status")::text, COUNT(*) FROM "t" WHERE "status" IS NOT NULL GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT 10000`,
		},
		{
			"min max",
			buildMinMaxSQL("t", "start_date"),
			`SELECT MIN("start_date")::text, MAX("start_date")::text FROM "t"`,
		},
		{
			"element counts array",
			buildElementCountsSQL("t", "conditions", "", 10000),
			`SELECT e::text, COUNT(*) FROM "t", unnest("conditions") AS e GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT 10000`,
		},
		{
			"element counts jsonb key",
			buildElementCountsSQL("t", "locations", "country", 10000),
			`SELECT e->>'country', COUNT(*) FROM "t", jsonb_array_elements("locations") AS e WHERE "locations" IS NOT NULL AND "locations" <> '[]'::jsonb GROUP BY 1 ORDER BY 2 DESC, 1 ASC LIMIT 10000`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Fatalf("sql = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// TestPgIdent verifies quote escaping for hostile identifiers.
func TestPgIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`with"quote`, `"with""quote"`},
		{"Mixed Case", `"Mixed Case"`},
	}
	for _, tt := range tests {
		if got := pgIdent(tt.in); got != tt.want {
			t.Errorf("pgIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestPgLiteral verifies quote escaping for element-count key literals.
func TestPgLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"country", `'country'`},
		{`it's`, `'it''s'`},
	}
	for _, tt := range tests {
		if got := pgLiteral(tt.in); got != tt.want {
			t.Errorf("pgLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
