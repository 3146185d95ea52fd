package services

import (
	"context"
	"testing"

	"reading-progress-service/models"
)

func TestSearchReadersTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	for _, r := range []models.Reader{
		{ExternalUserID: "u1", Username: "page_turner", DisplayName: "Page Turner"},
		{ExternalUserID: "u2", Username: "pageturner", DisplayName: "100% Reader"},
		{ExternalUserID: "u3", Username: "bookworm", DisplayName: "Worm"},
	} {
		if err := db.Create(&r).Error; err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"_", []string{"page_turner"}},
		{"%", []string{"pageturner"}},
		{"e_t", []string{"page_turner"}},
		{`\`, nil},
		{"", []string{"bookworm", "page_turner", "pageturner"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := svc.SearchReaders(context.Background(), tt.query, 0)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, r := range got {
				names = append(names, r.Username)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("query %q: expected %v, got %v", tt.query, tt.want, names)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("query %q: expected %v, got %v", tt.query, tt.want, names)
					break
				}
			}
		})
	}
}
