package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/energyledger/internal/domain"
	"github.com/iho/energyledger/internal/usecase"
)

type consistencyStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s *consistencyStub) CheckConsistency(context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_Consistency(t *testing.T) {
	tests := []struct {
		name           string
		stub           *consistencyStub
		wantStatus     int
		wantConsistent bool
	}{
		{
			name:           "consistent",
			stub:           &consistencyStub{report: &usecase.ConsistencyReport{Consistent: true}},
			wantStatus:     http.StatusOK,
			wantConsistent: true,
		},
		{
			name: "inconsistent is still a report",
			stub: &consistencyStub{
				report: &usecase.ConsistencyReport{Violations: []string{"drift"}},
				err:    domain.ErrInconsistentLedger,
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "store failure",
			stub:       &consistencyStub{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewLedgerHandler(tt.stub).Consistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var report usecase.ConsistencyReport
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("failed to decode report: %v", err)
			}
			if report.Consistent != tt.wantConsistent {
				t.Fatalf("expected consistent=%v, got %+v", tt.wantConsistent, report)
			}
		})
	}
}
