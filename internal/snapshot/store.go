// Package snapshot persists World state to disk for restart recovery:
// gob-encoded and gzip-compressed, written atomically (temp file then
// rename), filenamed world-tick{N}-{unix_seconds}.bin so a directory
// listing alone recovers both ordering fields without opening the file.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"worldcell/internal/worldmodel"
)

// schemaVersion guards against decoding a snapshot written by an
// incompatible future format.
const schemaVersion = 1

// payload is the gob-encoded envelope. World is persisted by value so gob
// does not need to chase a pointer graph.
type payload struct {
	Version int
	World   worldmodel.World
}

// Entry describes one snapshot file found on disk, parsed from its name
// without reading the file's contents.
type Entry struct {
	Path      string
	TickCount int
	Timestamp int64
}

// Store manages a directory of snapshot files.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func filename(tickCount int, timestamp int64) string {
	return fmt.Sprintf("world-tick%d-%d.bin", tickCount, timestamp)
}

// parseFilename extracts (tickCount, timestamp) from a name matching
// world-tick{N}-{timestamp}.bin, or ok=false for anything else (including
// the leading-dot temp files Save uses mid-write).
func parseFilename(name string) (tickCount int, timestamp int64, ok bool) {
	if strings.HasPrefix(name, ".") {
		return 0, 0, false
	}
	stem := strings.TrimSuffix(name, ".bin")
	if stem == name {
		return 0, 0, false
	}
	rest := strings.TrimPrefix(stem, "world-tick")
	if rest == stem {
		return 0, 0, false
	}
	parts := strings.SplitN(rest, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	tick, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return tick, ts, true
}

// Save writes world to the snapshot directory via a temp file plus atomic
// rename, so a crash mid-write never corrupts an existing snapshot or
// leaves a half-written file at the final name. now is the unix-seconds
// timestamp to stamp the filename with, passed in rather than read from
// the clock so callers control reproducibility.
func (s *Store) Save(world *worldmodel.World, now int64) (string, error) {
	data, err := encode(world)
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}

	name := filename(world.TickCount, now)
	target := filepath.Join(s.Dir, name)
	tmp := filepath.Join(s.Dir, "."+name+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return target, nil
}

// Load reads and decodes a single snapshot file, validating that its
// declared tile count matches the actual decoded cell slice length. A
// world whose recorded tile count is 0 is not checked.
func Load(path string) (*worldmodel.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	world, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: corrupt %s: %w", path, err)
	}
	if world.Generation.TileCount != 0 && len(world.Cells) != world.Generation.TileCount {
		return nil, fmt.Errorf("snapshot: corrupt %s: tile count mismatch (want %d, got %d)", path, world.Generation.TileCount, len(world.Cells))
	}
	return world, nil
}

// List returns every valid snapshot filename in the directory, sorted
// newest first by timestamp with tick count as tiebreaker. Temp files and
// unrelated entries are silently skipped.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tick, ts, ok := parseFilename(e.Name())
		if !ok {
			continue
		}
		out = append(out, Entry{Path: filepath.Join(s.Dir, e.Name()), TickCount: tick, Timestamp: ts})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].TickCount > out[j].TickCount
	})
	return out, nil
}

// Prune deletes all but the keep newest snapshots, returning the paths it
// removed.
func (s *Store) Prune(keep int) ([]string, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}

	var deleted []string
	for _, e := range entries[keep:] {
		if err := os.Remove(e.Path); err != nil {
			return deleted, fmt.Errorf("snapshot: prune %s: %w", e.Path, err)
		}
		deleted = append(deleted, e.Path)
	}
	return deleted, nil
}

// LoadLatestValid loads the newest snapshot that decodes successfully,
// falling back to progressively older ones if the newest is corrupt. It
// only returns an error once every snapshot on disk has been tried.
func (s *Store) LoadLatestValid() (*worldmodel.World, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("snapshot: no snapshots found in %s", s.Dir)
	}

	for _, e := range entries {
		world, err := Load(e.Path)
		if err == nil {
			return world, nil
		}
		log.Warn().Str("path", e.Path).Err(err).Msg("corrupt snapshot, trying next")
	}
	return nil, fmt.Errorf("snapshot: no valid snapshots in %s", s.Dir)
}

func encode(world *worldmodel.World) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload{Version: schemaVersion, World: *world}); err != nil {
		return nil, err
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}

func decode(data []byte) (*worldmodel.World, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		return nil, err
	}
	if p.Version != schemaVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", p.Version)
	}
	return &p.World, nil
}
