package migrations

import "testing"

func TestNamesOrdered(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) == 0 || names[0] != "001_game_results.sql" {
		t.Fatalf("names = %v", names)
	}
}
