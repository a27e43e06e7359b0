package persistence

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"

	"github.com/talgya/galaxy-sim/internal/engine"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
)

// genesisHash seeds the checkpoint hash chain.
const genesisHash = "galaxy-sim"

var ErrCorruptCheckpoint = errors.New("checkpoint does not match its hash")

// State is the archival form of a galaxy at one turn. It holds everything
// the normalized tables hold, in one document.
type State struct {
	Turn      uint64                      `json:"turn"`
	Seed      int64                       `json:"seed"`
	Factions  []*social.Faction           `json:"factions"`
	Relations []social.Relationship       `json:"relations"`
	Ships     map[ships.ID]ships.Snapshot `json:"ships"`
}

// Capture builds the archival state of a simulation.
func Capture(sim *engine.Simulation) (*State, error) {
	st := &State{
		Turn:      sim.TurnNumber,
		Seed:      sim.Seed,
		Factions:  sim.Factions,
		Relations: sim.Relations.Pairs(),
		Ships:     make(map[ships.ID]ships.Snapshot, len(sim.Ships)),
	}
	for _, sh := range sim.Ships {
		if !sh.Alive() {
			continue
		}
		snap, err := sim.SnapshotShip(sh.ID)
		if err != nil {
			return nil, err
		}
		st.Ships[sh.ID] = snap
	}
	return st, nil
}

// Fingerprint returns the BLAKE3 hash of the state's JSON form. Map keys are
// encoded in sorted order, so equal states share a fingerprint.
func Fingerprint(st *State) (string, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return hashBLAKE3(raw), nil
}

// Checkpoint archives the current state as an LZ4-compressed blob, chained to
// the previous checkpoint's hash.
func (db *DB) Checkpoint(sim *engine.Simulation) (string, error) {
	st, err := Capture(sim)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	compressed, err := compressLZ4(raw)
	if err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}

	prev, err := db.lastChainHash(st.Turn)
	if err != nil {
		return "", err
	}
	chain := hashBLAKE3(append(compressed, prev...))

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO checkpoints
		(turn, run_id, state_blob, fingerprint, chain_hash) VALUES (?, ?, ?, ?, ?)`,
		st.Turn, sim.RunID, compressed, hashBLAKE3(raw), chain)
	if err != nil {
		return "", fmt.Errorf("insert checkpoint: %w", err)
	}

	slog.Info("checkpoint",
		"turn", st.Turn,
		"size", humanize.Bytes(uint64(len(compressed))),
		"raw", humanize.Bytes(uint64(len(raw))),
		"hash", chain[:12],
	)
	return chain, nil
}

// lastChainHash returns the chain hash of the newest checkpoint before turn.
func (db *DB) lastChainHash(turn uint64) (string, error) {
	var prev string
	err := db.conn.Get(&prev, "SELECT chain_hash FROM checkpoints WHERE turn < ? ORDER BY turn DESC LIMIT 1", turn)
	if errors.Is(err, sql.ErrNoRows) {
		return genesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("previous checkpoint: %w", err)
	}
	return prev, nil
}

type checkpointRow struct {
	Turn        uint64 `db:"turn"`
	RunID       string `db:"run_id"`
	Blob        []byte `db:"state_blob"`
	Fingerprint string `db:"fingerprint"`
	ChainHash   string `db:"chain_hash"`
}

// LoadCheckpoint decodes the checkpoint saved at turn and verifies its
// fingerprint.
func (db *DB) LoadCheckpoint(turn uint64) (*State, error) {
	var row checkpointRow
	if err := db.conn.Get(&row, "SELECT * FROM checkpoints WHERE turn = ?", turn); err != nil {
		return nil, fmt.Errorf("checkpoint %d: %w", turn, err)
	}
	raw, err := decompressLZ4(row.Blob)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %d: %w", turn, err)
	}
	if hashBLAKE3(raw) != row.Fingerprint {
		return nil, fmt.Errorf("checkpoint %d: %w", turn, ErrCorruptCheckpoint)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("checkpoint %d: %w", turn, err)
	}
	return &st, nil
}

// VerifyChain walks every checkpoint in turn order and reports the first
// whose chain hash does not follow from its predecessor.
func (db *DB) VerifyChain() error {
	var rows []checkpointRow
	if err := db.conn.Select(&rows, "SELECT * FROM checkpoints ORDER BY turn"); err != nil {
		return err
	}
	prev := genesisHash
	for _, r := range rows {
		if hashBLAKE3(append(r.Blob, prev...)) != r.ChainHash {
			return fmt.Errorf("checkpoint %d: %w", r.Turn, ErrCorruptCheckpoint)
		}
		prev = r.ChainHash
	}
	return nil
}

func compressLZ4(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(src))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hashBLAKE3(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ResetCheckpoints drops the checkpoint history, starting a new chain.
func (db *DB) ResetCheckpoints() error {
	_, err := db.conn.Exec("DELETE FROM checkpoints")
	return err
}
