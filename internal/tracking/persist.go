package tracking

//go:generate mockgen -source=persist.go -destination=mocks/persister_mock.go -package=mock_tracking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot - сохраняемая часть кэша.
type Snapshot struct {
	Entries   []Entry   `json:"entries"`
	Selection Selection `json:"selection"`
}

// Persister сохраняет и восстанавливает записи кэша между запусками.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	encMode, err = opts.EncMode()
	if err != nil {
		panic("tracking: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("tracking: CBOR decoder initialization failed: " + err.Error())
	}
}

// FilePersister хранит снимок кэша в одном CBOR-файле.
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load читает снимок; отсутствующий файл дает пустой снимок.
func (p *FilePersister) Load(_ context.Context) (Snapshot, error) {
	var snapshot Snapshot
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return snapshot, nil
	}
	if err != nil {
		return snapshot, fmt.Errorf("read tracking snapshot: %w", err)
	}
	if err := decMode.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("decode tracking snapshot %s: %w", p.Path, err)
	}
	return snapshot, nil
}

// Save записывает снимок во временный файл и атомарно подменяет им старый.
func (p *FilePersister) Save(_ context.Context, snapshot Snapshot) error {
	data, err := encMode.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode tracking snapshot: %w", err)
	}

	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tracking-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.Path); err != nil {
		return fmt.Errorf("replace tracking snapshot: %w", err)
	}
	return nil
}

// formatTime и parseTime задают текстовое представление времени в SQLite.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
