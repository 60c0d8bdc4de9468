package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// deadPID is far above any real pid_max.
const deadPID = 2147483647

func writePID(t *testing.T, content string) *PIDFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to seed PID file: %v", err)
	}
	return NewPIDFile(path)
}

func readPIDContent(t *testing.T, pf *PIDFile) string {
	t.Helper()
	content, err := os.ReadFile(pf.Path())
	if err != nil {
		t.Fatalf("failed to read PID file: %v", err)
	}
	return strings.TrimSpace(string(content))
}

func TestPIDFile_WriteCreatesParentDirectory(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nested", "dir", "daemon.pid"))
	if err := pf.Write(); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := readPIDContent(t, pf), strconv.Itoa(os.Getpid()); got != want {
		t.Errorf("PID file content = %q, want %q", got, want)
	}
}

func TestPIDFile_WriteOverwrites(t *testing.T) {
	pf := writePID(t, "99999")
	if err := pf.Write(); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := readPIDContent(t, pf), strconv.Itoa(os.Getpid()); got != want {
		t.Errorf("PID file content = %q, want %q", got, want)
	}
}

func TestPIDFile_Read(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "plain", content: "12345", want: 12345},
		{name: "trailing newline", content: "12345\n", want: 12345},
		{name: "surrounding whitespace", content: "  12345  \n", want: 12345},
		{name: "large", content: "4194304", want: 4194304},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace only", content: "  \n", wantErr: true},
		{name: "non numeric", content: "not-a-pid", wantErr: true},
		{name: "zero", content: "0", wantErr: true},
		{name: "negative", content: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := writePID(t, tt.content).Read()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Read() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPIDFile_ReadMissing(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
	if _, err := pf.Read(); err == nil {
		t.Error("Read() expected error for missing file")
	}
}

func TestPIDFile_RemoveIsIdempotent(t *testing.T) {
	pf := writePID(t, "12345")
	for i := 0; i < 2; i++ {
		if err := pf.Remove(); err != nil {
			t.Fatalf("Remove() #%d error = %v", i+1, err)
		}
	}
	if _, err := os.Stat(pf.Path()); !os.IsNotExist(err) {
		t.Error("Remove() left the file behind")
	}
}

func TestPIDFile_IsStale(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    bool
		wantErr bool
	}{
		{name: "missing file", content: nil, want: false},
		{name: "current process", content: ptr(strconv.Itoa(os.Getpid())), want: false},
		{name: "dead process", content: ptr(strconv.Itoa(deadPID)), want: true},
		{name: "invalid content", content: ptr("invalid"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pf *PIDFile
			if tt.content == nil {
				pf = NewPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
			} else {
				pf = writePID(t, *tt.content)
			}

			got, err := pf.IsStale()
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsStale() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPIDFile_Running(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		pf := NewPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
		if _, err := pf.Running(); !errors.Is(err, ErrDaemonNotRunning) {
			t.Errorf("Running() error = %v, want ErrDaemonNotRunning", err)
		}
	})

	t.Run("stale file", func(t *testing.T) {
		pid, err := writePID(t, strconv.Itoa(deadPID)).Running()
		if !errors.Is(err, ErrDaemonNotRunning) {
			t.Errorf("Running() error = %v, want ErrDaemonNotRunning", err)
		}
		if pid != deadPID {
			t.Errorf("Running() pid = %d, want %d", pid, deadPID)
		}
	})

	t.Run("live process", func(t *testing.T) {
		pid, err := writePID(t, strconv.Itoa(os.Getpid())).Running()
		if err != nil {
			t.Fatalf("Running() error = %v", err)
		}
		if pid != os.Getpid() {
			t.Errorf("Running() pid = %d, want %d", pid, os.Getpid())
		}
	})
}

func TestPIDFile_CheckAndClaim(t *testing.T) {
	t.Run("no existing file", func(t *testing.T) {
		pf := NewPIDFile(filepath.Join(t.TempDir(), "daemon.pid"))
		if err := pf.CheckAndClaim(); err != nil {
			t.Fatalf("CheckAndClaim() error = %v", err)
		}
		if got, want := readPIDContent(t, pf), strconv.Itoa(os.Getpid()); got != want {
			t.Errorf("PID file content = %q, want %q", got, want)
		}
	})

	t.Run("stale file is replaced", func(t *testing.T) {
		pf := writePID(t, strconv.Itoa(deadPID))
		if err := pf.CheckAndClaim(); err != nil {
			t.Fatalf("CheckAndClaim() error = %v", err)
		}
		if got, want := readPIDContent(t, pf), strconv.Itoa(os.Getpid()); got != want {
			t.Errorf("PID file content = %q, want %q", got, want)
		}
	})

	t.Run("live daemon", func(t *testing.T) {
		pf := writePID(t, strconv.Itoa(os.Getpid()))
		if err := pf.CheckAndClaim(); !errors.Is(err, ErrDaemonAlreadyRunning) {
			t.Errorf("CheckAndClaim() error = %v, want ErrDaemonAlreadyRunning", err)
		}
	})

	for _, content := range []string{"not-a-pid", "-1"} {
		t.Run("invalid "+content, func(t *testing.T) {
			if err := writePID(t, content).CheckAndClaim(); err == nil {
				t.Error("CheckAndClaim() expected error")
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
