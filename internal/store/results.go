package store

import (
	"database/sql"

	"go-sqa-metrics/internal/model"
)

// SaveResult inserts or replaces a result's metadata.
func (db *DB) SaveResult(r model.Result) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO results (id, project, version, name, kind, file_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.Version, r.Name, r.Kind, r.FilePath, r.CreatedAt)
	return err
}

// GetResult fetches one result by id.
func (db *DB) GetResult(id string) (model.Result, error) {
	var r model.Result
	err := db.QueryRow(`SELECT id, project, version, name, kind, file_path, created_at FROM results WHERE id = ?`, id).
		Scan(&r.ID, &r.Project, &r.Version, &r.Name, &r.Kind, &r.FilePath, &r.CreatedAt)
	if err != nil {
		return model.Result{}, notFound(err, "result", id)
	}
	return r, nil
}

// ListResults returns results, newest first. An empty project lists all.
func (db *DB) ListResults(project string) ([]model.Result, error) {
	query := `SELECT id, project, version, name, kind, file_path, created_at FROM results`
	var args []interface{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.Result{}
	for rows.Next() {
		var r model.Result
		if err := rows.Scan(&r.ID, &r.Project, &r.Version, &r.Name, &r.Kind, &r.FilePath, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteResult removes a result's metadata. The report file is left alone.
func (db *DB) DeleteResult(id string) error {
	res, err := db.Exec(`DELETE FROM results WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "result", id)
	}
	return nil
}
