package factory

import (
	"context"
	"testing"

	"github.com/kilianp07/lineplan/connectors"
)

func TestNewHistorySource(t *testing.T) {
	tests := []struct {
		typ         string
		expectedErr bool
	}{
		{IDCSV, false},
		{IDERP, false},
		{"unknown_id", true},
	}
	for _, tt := range tests {
		src, err := NewHistorySource(context.Background(), connectors.Config{Type: tt.typ, URL: "http://erp"}, nil)
		if tt.expectedErr {
			if err == nil {
				t.Errorf("expected error for type %s, got nil", tt.typ)
			}
			continue
		}
		if err != nil {
			t.Errorf("did not expect error for type %s, got %v", tt.typ, err)
		}
		if src == nil {
			t.Errorf("expected non-nil source for type %s", tt.typ)
		}
	}
}
