package fieldspec

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestFieldSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   FieldSpec
		wantErr bool
	}{
		{
			name:  "valid integer field",
			field: FieldSpec{Name: "wins", Kind: KindInteger, MinValue: floatPtr(0), MaxValue: floatPtr(17)},
		},
		{
			name:  "valid enum field",
			field: FieldSpec{Name: "conference", Kind: KindEnum, Enum: []string{"AFC", "NFC"}},
		},
		{
			name:    "missing name",
			field:   FieldSpec{Kind: KindText},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			field:   FieldSpec{Name: "x", Kind: Kind("blob")},
			wantErr: true,
		},
		{
			name:    "enum without values",
			field:   FieldSpec{Name: "conference", Kind: KindEnum},
			wantErr: true,
		},
		{
			name:    "enum values on text field",
			field:   FieldSpec{Name: "team", Kind: KindText, Enum: []string{"KAN"}},
			wantErr: true,
		},
		{
			name:    "inverted range",
			field:   FieldSpec{Name: "wins", Kind: KindInteger, MinValue: floatPtr(17), MaxValue: floatPtr(0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	c, err := NewCatalog("nfl", "game_log", []FieldSpec{
		{Name: "team", Label: "Tm", Kind: KindText, Required: true, Indexed: true},
		{Name: "opponent", Label: "Opp", Kind: KindText, Required: true},
		{Name: "points_scored", Label: "PF", Kind: KindInteger},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	if got := c.TableName(); got != "nfl.game_log" {
		t.Fatalf("unexpected table name: %s", got)
	}

	f, ok := c.FieldByLabel("Tm")
	if !ok || f.Name != "team" {
		t.Fatalf("unexpected label lookup: %+v ok=%v", f, ok)
	}
	if _, ok := c.FieldByLabel("Unknown"); ok {
		t.Fatal("expected unknown label to miss")
	}
	if _, ok := c.Field("opponent"); !ok {
		t.Fatal("expected name lookup to hit")
	}

	if got := len(c.RequiredFields()); got != 2 {
		t.Fatalf("unexpected required count: %d", got)
	}
	if got := len(c.IndexedFields()); got != 1 {
		t.Fatalf("unexpected indexed count: %d", got)
	}
}

func TestCatalogRejectsDuplicateNames(t *testing.T) {
	_, err := NewCatalog("nfl", "game_log", []FieldSpec{
		{Name: "team", Kind: KindText},
		{Name: "team", Kind: KindText},
	})
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
}
