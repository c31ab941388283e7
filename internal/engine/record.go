package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wolfpit/wolfpit/internal/game"
)

// MatchRecord is the read-only archive of a finished match, written
// once at game over.
type MatchRecord struct {
	MatchID    string                   `json:"match_id"`
	FinishedAt time.Time                `json:"finished_at"`
	Days       int                      `json:"days"`
	Winner     string                   `json:"winner"`
	WinReason  string                   `json:"win_reason"`
	Packs      []string                 `json:"packs,omitempty"`
	Seeds      game.Seeds               `json:"seeds"`
	Players    []RecordPlayer           `json:"players"`
	Deaths     []RecordDeath            `json:"deaths"`
	Roles      map[game.PlayerID]string `json:"roles"`
}

// RecordPlayer is one roster entry in the archive.
type RecordPlayer struct {
	ID       game.PlayerID `json:"id"`
	Name     string        `json:"name"`
	Role     string        `json:"role"`
	Survived bool          `json:"survived"`
}

// RecordDeath is one death log entry in the archive.
type RecordDeath struct {
	Player game.PlayerID `json:"player"`
	Cause  string        `json:"cause"`
	Day    int           `json:"day"`
}

// buildRecord snapshots the finished state. Callers hold the lock.
func (e *Engine) buildRecord() MatchRecord {
	s := e.state
	rec := MatchRecord{
		MatchID:    e.matchID,
		FinishedAt: e.clock.Now(),
		Days:       s.Day,
		Winner:     s.Winner.String(),
		WinReason:  s.WinReason,
		Seeds:      s.Seeds,
		Roles:      make(map[game.PlayerID]string, len(s.Roles)),
	}
	for _, p := range s.SelectedPacks {
		rec.Packs = append(rec.Packs, p.Name)
	}
	for _, p := range s.Players {
		rec.Players = append(rec.Players, RecordPlayer{
			ID:       p.ID,
			Name:     p.Name,
			Role:     s.RoleOf(p.ID).String(),
			Survived: s.IsAlive(p.ID),
		})
		rec.Roles[p.ID] = s.RoleOf(p.ID).String()
	}
	for _, d := range s.Deaths {
		rec.Deaths = append(rec.Deaths, RecordDeath{Player: d.Player, Cause: d.Cause.String(), Day: d.Day})
	}
	return rec
}

// archive writes the match record atomically into the configured
// directory. An empty directory disables archiving.
func (e *Engine) archive() error {
	dir := e.state.Config.ArchiveDir
	if dir == "" {
		return nil
	}
	rec := e.buildRecord()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal match record: %w", err)
	}
	path := filepath.Join(dir, e.matchID+".json")
	if err := writeRecordFile(path, data); err != nil {
		return fmt.Errorf("write match record: %w", err)
	}
	e.logger.Info("archived match record", "path", path)
	return nil
}

// writeRecordFile lands the record on disk through a rename from a
// sibling temp file, so a crash mid-write leaves either the previous
// record or none, never a truncated one. The temp file must share the
// record's directory for the rename to stay atomic.
func writeRecordFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
