package tiles

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
)

// ErrTileNotFound is returned by GetTile for a coordinate with no stored tile
var ErrTileNotFound = errors.New("tile does not exist")

const archiveSchema = `
create table if not exists tiles (
	face text not null,
	level integer not null,
	tile_row integer not null,
	tile_col integer not null,
	tile_data blob not null,
	primary key (face, level, tile_row, tile_col)
);
create table if not exists metadata (
	name text primary key,
	value text not null
);`

// Archive stores a whole tile pyramid in a single SQLite file. Tiles are
// kept as encoded image bytes, keyed by face letter, level, row and column.
type Archive struct {
	Filename string
	Format   imageio.Format
	Quality  int

	db                            *sql.DB
	putStmt, getStmt, putMetaStmt *sql.Stmt
	mtx                           sync.Mutex
}

// CreateArchive creates (or reuses) the archive at path and prepares it
// for writing
func CreateArchive(path string, format imageio.Format, quality int) (*Archive, error) {
	a := &Archive{Filename: path, Format: format, Quality: quality}
	if err := a.open(true); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenArchive opens an existing archive
func OpenArchive(path string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	a := &Archive{Filename: path, Format: imageio.FormatJPEG}
	if err := a.open(false); err != nil {
		return nil, err
	}
	if f, ok := a.lookupMetadata("format"); ok {
		if parsed, err := imageio.FormatFromExt(f); err == nil {
			a.Format = parsed
		}
	}
	return a, nil
}

func (a *Archive) open(create bool) (err error) {
	ok := false
	defer func() {
		if !ok {
			a.closeStatements()
			if a.db != nil {
				a.db.Close()
				a.db = nil
			}
		}
	}()

	a.db, err = sql.Open("sqlite3", "file:"+a.Filename+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return err
	}
	a.db.SetMaxOpenConns(1)

	if create {
		if _, err = a.db.Exec(archiveSchema); err != nil {
			return fmt.Errorf("create archive schema: %w", err)
		}
	}

	a.putStmt, err = a.db.Prepare(`insert or replace into tiles
(face, level, tile_row, tile_col, tile_data) values (?1, ?2, ?3, ?4, ?5)`)
	if err != nil {
		return err
	}
	a.getStmt, err = a.db.Prepare(`select tile_data from tiles
where face = ?1 and level = ?2 and tile_row = ?3 and tile_col = ?4`)
	if err != nil {
		return err
	}
	a.putMetaStmt, err = a.db.Prepare(`insert or replace into metadata (name, value) values (?1, ?2)`)
	if err != nil {
		return err
	}
	ok = true
	return nil
}

func (a *Archive) closeStatements() {
	for _, s := range []*sql.Stmt{a.putStmt, a.getStmt, a.putMetaStmt} {
		if s != nil {
			s.Close()
		}
	}
	a.putStmt, a.getStmt, a.putMetaStmt = nil, nil, nil
}

// Close releases the database
func (a *Archive) Close() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.db == nil {
		return nil
	}
	a.closeStatements()
	err := a.db.Close()
	a.db = nil
	return err
}

// WriteTile implements Sink
func (a *Archive) WriteTile(face models.FaceID, coord models.TileCoordinate, buf *models.PixelBuffer) error {
	var data bytes.Buffer
	if err := imageio.Encode(&data, buf, a.Format, a.Quality); err != nil {
		return err
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()
	if _, err := a.putStmt.Exec(face.Letter(), coord.Level, coord.Row, coord.Col, data.Bytes()); err != nil {
		return fmt.Errorf("store tile %s: %w", coord.Name(face), err)
	}
	return nil
}

// GetTile returns the encoded bytes of one tile
func (a *Archive) GetTile(face models.FaceID, coord models.TileCoordinate) ([]byte, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	rows, err := a.getStmt.Query(face.Letter(), coord.Level, coord.Row, coord.Col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, ErrTileNotFound
	}
	var blob []byte
	if err = rows.Scan(&blob); err != nil {
		return nil, err
	}
	return blob, nil
}

// SetMetadata stores a name/value pair
func (a *Archive) SetMetadata(name, value string) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	_, err := a.putMetaStmt.Exec(name, value)
	return err
}

// Metadata returns every stored name/value pair
func (a *Archive) Metadata() (map[string]string, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	rows, err := a.db.Query(`select name, value from metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	md := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		md[name] = value
	}
	return md, rows.Err()
}

func (a *Archive) lookupMetadata(name string) (string, bool) {
	var value string
	err := a.db.QueryRow(`select value from metadata where name = ?1`, name).Scan(&value)
	return value, err == nil
}
