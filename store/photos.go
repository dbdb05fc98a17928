package store

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// ScannedPhoto is one photo discovered on disk during a library scan.
type ScannedPhoto struct {
	Album    string
	Filename string
}

const photoColumns = `id, filename, album, COALESCE(caption, ''), selected`

func (d *Database) scanPhotoRows(rows *sql.Rows) ([]Photo, error) {
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.Album, &p.Caption, &p.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return photos, nil
}

func (d *Database) AllPhotos() ([]Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photo_list
		ORDER BY album ASC, filename ASC
	`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	return d.scanPhotoRows(rows)
}

func (d *Database) PhotosInAlbum(album string) ([]Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photo_list
		WHERE album = ?
		ORDER BY filename ASC
	`
	rows, err := d.db.Query(query, album)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	return d.scanPhotoRows(rows)
}

// SelectedPhotos returns the photos participating in the slideshow in
// album/filename order.
func (d *Database) SelectedPhotos() ([]Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photo_list
		WHERE selected = 1
		ORDER BY album ASC, filename ASC
	`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query selected photos: %w", err)
	}
	return d.scanPhotoRows(rows)
}

func (d *Database) GetPhoto(id int64) (*Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photo_list WHERE id = ?`
	var p Photo
	err := d.db.QueryRow(query, id).Scan(&p.ID, &p.Filename, &p.Album, &p.Caption, &p.Selected)
	if err == sql.ErrNoRows {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

func (d *Database) GetPhotoByPath(album, filename string) (*Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photo_list WHERE album = ? AND filename = ?`
	var p Photo
	err := d.db.QueryRow(query, album, filename).Scan(&p.ID, &p.Filename, &p.Album, &p.Caption, &p.Selected)
	if err == sql.ErrNoRows {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

func (d *Database) InsertPhoto(filename, album string) (int64, error) {
	query := `INSERT INTO photo_list (filename, album) VALUES (?, ?)`
	result, err := d.db.Exec(query, filename, album)
	if err != nil {
		return 0, fmt.Errorf("failed to insert photo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted photo id: %w", err)
	}
	return id, nil
}

func (d *Database) DeletePhoto(id int64) error {
	result, err := d.db.Exec(`DELETE FROM photo_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (d *Database) SetPhotoSelected(id int64, selected bool) error {
	result, err := d.db.Exec(`UPDATE photo_list SET selected = ? WHERE id = ?`, boolToInt(selected), id)
	if err != nil {
		return fmt.Errorf("failed to update photo selection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (d *Database) SetAlbumSelected(album string, selected bool) error {
	result, err := d.db.Exec(`UPDATE photo_list SET selected = ? WHERE album = ?`, boolToInt(selected), album)
	if err != nil {
		return fmt.Errorf("failed to update album selection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func (d *Database) SetAllSelected(selected bool) error {
	if _, err := d.db.Exec(`UPDATE photo_list SET selected = ?`, boolToInt(selected)); err != nil {
		return fmt.Errorf("failed to update selection: %w", err)
	}
	return nil
}

func (d *Database) SetCaption(id int64, caption string) error {
	result, err := d.db.Exec(`UPDATE photo_list SET caption = ? WHERE id = ?`, caption, id)
	if err != nil {
		return fmt.Errorf("failed to update caption: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (d *Database) Albums() ([]AlbumInfo, error) {
	query := `
		SELECT album, COUNT(*)
		FROM photo_list
		GROUP BY album
		ORDER BY album ASC
	`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []AlbumInfo
	for rows.Next() {
		var a AlbumInfo
		if err := rows.Scan(&a.Name, &a.NumPhotos); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return albums, nil
}

func (d *Database) Counts() (LibraryCounts, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT album) FROM photo_list`
	var c LibraryCounts
	if err := d.db.QueryRow(query).Scan(&c.NumPhotos, &c.NumAlbums); err != nil {
		return LibraryCounts{}, fmt.Errorf("failed to get library counts: %w", err)
	}
	return c, nil
}

// ApplyScan reconciles the database with the photos found on disk. New
// photos are registered unselected, photos whose files are gone are
// deregistered, and photos that persist keep their selection and caption.
func (d *Database) ApplyScan(found []ScannedPhoto) (added, removed int, err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id, filename, album FROM photo_list`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query existing photos: %w", err)
	}

	type key struct{ album, filename string }
	existing := make(map[key]int64)
	for rows.Next() {
		var id int64
		var filename, album string
		if err := rows.Scan(&id, &filename, &album); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan photo: %w", err)
		}
		existing[key{album, filename}] = id
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, 0, fmt.Errorf("error iterating rows: %w", err)
	}
	rows.Close()

	seen := make(map[key]bool, len(found))
	for _, photo := range found {
		k := key{photo.Album, photo.Filename}
		if seen[k] {
			continue
		}
		seen[k] = true

		if _, ok := existing[k]; ok {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO photo_list (filename, album) VALUES (?, ?)`, photo.Filename, photo.Album); err != nil {
			return 0, 0, fmt.Errorf("failed to register photo %s/%s: %w", photo.Album, photo.Filename, err)
		}
		added++
	}

	for k, id := range existing {
		if seen[k] {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM photo_list WHERE id = ?`, id); err != nil {
			return 0, 0, fmt.Errorf("failed to deregister photo %s/%s: %w", k.album, k.filename, err)
		}
		removed++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if added > 0 || removed > 0 {
		slog.Info("library scan applied", "added", added, "removed", removed)
	}
	return added, removed, nil
}
