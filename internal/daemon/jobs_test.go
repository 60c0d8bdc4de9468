package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/leefowlercu/phoenix/internal/events"
)

func TestJobRunner_Run(t *testing.T) {
	tests := []struct {
		name       string
		result     RunResult
		wantStatus JobStatus
		wantEvents []events.EventType
	}{
		{
			name:       "success",
			result:     RunResult{Status: RunSuccess, Counts: map[string]int{"proposals": 3}},
			wantStatus: JobStatusSuccess,
			wantEvents: []events.EventType{events.JobStarted, events.JobCompleted},
		},
		{
			name:       "partial",
			result:     RunResult{Status: RunPartial, Error: "synthesis failed"},
			wantStatus: JobStatusPartial,
			wantEvents: []events.EventType{events.JobStarted, events.JobCompleted},
		},
		{
			name:       "failed",
			result:     RunResult{Status: RunFailed, Error: "scan failed"},
			wantStatus: JobStatusFailed,
			wantEvents: []events.EventType{events.JobStarted, events.JobFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewBus()
			defer bus.Close()
			received := make(chan events.EventType, 8)
			bus.SubscribeAll(func(e events.Event) { received <- e.Type })

			hm := NewHealthManager()
			jr := NewJobRunner(bus, hm, nil)

			var sawRunning bool
			got := jr.Run(context.Background(), JobSync, func(ctx context.Context) RunResult {
				sawRunning = hm.Status().Jobs[JobSync].Status == JobStatusRunning
				return tt.result
			})

			if !sawRunning {
				t.Error("job not marked running while in progress")
			}
			if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
				t.Error("Run() left timestamps unset")
			}

			job := hm.Status().Jobs[JobSync]
			if job.Status != tt.wantStatus {
				t.Errorf("job status = %q, want %q", job.Status, tt.wantStatus)
			}
			if job.Error != tt.result.Error {
				t.Errorf("job error = %q, want %q", job.Error, tt.result.Error)
			}

			for _, want := range tt.wantEvents {
				select {
				case typ := <-received:
					if typ != want {
						t.Errorf("event = %s, want %s", typ, want)
					}
				case <-time.After(2 * time.Second):
					t.Fatalf("event %s not published", want)
				}
			}
		})
	}
}

func TestJobRunner_NilBus(t *testing.T) {
	hm := NewHealthManager()
	jr := NewJobRunner(nil, hm, nil)

	jr.Run(context.Background(), JobPropose, func(ctx context.Context) RunResult {
		return RunResult{Status: RunSuccess}
	})
	if got := hm.Status().Jobs[JobPropose].Status; got != JobStatusSuccess {
		t.Errorf("job status = %q, want success", got)
	}
}
