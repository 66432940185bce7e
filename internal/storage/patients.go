package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

const patientColumns = `id, display_id, user_id, name, phone, email, address, location,
	initial_complaint, initial_diagnosis, photo, group_name, is_favorite, notes,
	created_at, updated_at`

func scanPatient(row rowScanner) (*models.Patient, error) {
	p := &models.Patient{}
	var notes []byte
	if err := row.Scan(&p.ID, &p.DisplayID, &p.UserID, &p.Name, &p.Phone, &p.Email,
		&p.Address, &p.Location, &p.InitialComplaint, &p.InitialDiagnosis, &p.Photo,
		&p.Group, &p.IsFavorite, &notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Notes = []models.Note{}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &p.Notes); err != nil {
			return nil, fmt.Errorf("decode notes: %w", err)
		}
	}
	return p, nil
}

// NextPatientSequence атомарно увеличивает счетчик пользователя и возвращает новое значение.
// Отсутствующий счетчик создается со значением 1.
func (s *Storage) NextPatientSequence(ctx context.Context, userID string) (int64, error) {
	const op = "storage.NextPatientSequence"

	query := `INSERT INTO patient_counters (user_id, sequence)
			  VALUES ($1, 1)
			  ON CONFLICT (user_id) DO UPDATE SET sequence = patient_counters.sequence + 1
			  RETURNING sequence`
	var seq int64
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return seq, nil
}

// EnsurePatientSequence поднимает счетчик пользователя не ниже seq. Счетчик никогда не уменьшается.
func (s *Storage) EnsurePatientSequence(ctx context.Context, userID string, seq int64) error {
	const op = "storage.EnsurePatientSequence"

	query := `INSERT INTO patient_counters (user_id, sequence)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE
			  SET sequence = GREATEST(patient_counters.sequence, EXCLUDED.sequence)`
	if _, err := s.DB.ExecContext(ctx, query, userID, seq); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePatient сохраняет карточку и возвращает ее в том виде, в каком она записана в базу.
func (s *Storage) CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	const op = "storage.CreatePatient"

	notes, err := json.Marshal(p.Notes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Notes == nil {
		notes = []byte("[]")
	}

	query := `INSERT INTO patients (id, display_id, user_id, name, phone, email, address, location,
			      initial_complaint, initial_diagnosis, photo, group_name, is_favorite, notes,
			      created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::jsonb, $15, $16)
			  RETURNING ` + patientColumns
	row := s.DB.QueryRowContext(ctx, query,
		p.ID, p.DisplayID, p.UserID, p.Name, p.Phone, p.Email, p.Address, p.Location,
		p.InitialComplaint, p.InitialDiagnosis, p.Photo, p.Group, p.IsFavorite, string(notes),
		p.CreatedAt, p.UpdatedAt)
	created, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE, чтобы поиск шел по подстроке.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListPatients возвращает карточки пользователя по фильтру, новые первыми.
func (s *Storage) ListPatients(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error) {
	const op = "storage.ListPatients"

	var b strings.Builder
	b.WriteString(`SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`)
	args := []any{userID}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		fmt.Fprintf(&b, ` AND (name ILIKE $%d OR display_id ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)`, n, n, n, n)
	}
	if filter.Group != "" {
		args = append(args, filter.Group)
		fmt.Fprintf(&b, ` AND group_name = $%d`, len(args))
	}
	if filter.FavoritesOnly {
		b.WriteString(` AND is_favorite`)
	}
	args = append(args, models.MaxPatientsPerList)
	fmt.Fprintf(&b, ` ORDER BY created_at DESC, display_id DESC LIMIT $%d`, len(args))

	return s.queryPatients(ctx, op, b.String(), args...)
}

func (s *Storage) queryPatients(ctx context.Context, op, query string, args ...any) ([]models.Patient, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPatient возвращает карточку по id. Чужая карточка неотличима от отсутствующей.
func (s *Storage) GetPatient(ctx context.Context, userID, patientID string) (*models.Patient, error) {
	const op = "storage.GetPatient"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1 AND user_id = $2`, patientID, userID)
	p, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return p, nil
}

// UpdatePatient перезаписывает только переданные поля.
// updated_at всегда строго растет, даже если поля не переданы.
func (s *Storage) UpdatePatient(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	const op = "storage.UpdatePatient"

	query := `UPDATE patients SET
			      name = COALESCE($3, name),
			      phone = COALESCE($4, phone),
			      email = COALESCE($5, email),
			      address = COALESCE($6, address),
			      location = COALESCE($7, location),
			      initial_complaint = COALESCE($8, initial_complaint),
			      initial_diagnosis = COALESCE($9, initial_diagnosis),
			      photo = COALESCE($10, photo),
			      group_name = COALESCE($11, group_name),
			      is_favorite = COALESCE($12, is_favorite),
			      updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + patientColumns
	row := s.DB.QueryRowContext(ctx, query, patientID, userID,
		upd.Name, upd.Phone, upd.Email, upd.Address, upd.Location,
		upd.InitialComplaint, upd.InitialDiagnosis, upd.Photo, upd.Group, upd.IsFavorite)
	p, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return p, nil
}

// DeletePatient удаляет карточку вместе с заметками и документами.
func (s *Storage) DeletePatient(ctx context.Context, userID, patientID string) error {
	const op = "storage.DeletePatient"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM patients WHERE id = $1 AND user_id = $2`, patientID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AddNote атомарно дописывает заметку в конец массива заметок карточки.
func (s *Storage) AddNote(ctx context.Context, userID, patientID string, note *models.Note) error {
	const op = "storage.AddNote"

	raw, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE patients
			  SET notes = notes || jsonb_build_array($3::jsonb),
			      updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')
			  WHERE id = $1 AND user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, patientID, userID, string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListNotes возвращает заметки карточки в порядке добавления.
func (s *Storage) ListNotes(ctx context.Context, userID, patientID string) ([]models.Note, error) {
	const op = "storage.ListNotes"

	var raw []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT notes FROM patients WHERE id = $1 AND user_id = $2`, patientID, userID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	notes := []models.Note{}
	if err = json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

// ListGroups возвращает непустые названия групп пользователя по алфавиту.
func (s *Storage) ListGroups(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.ListGroups"

	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT group_name FROM patients
		WHERE user_id = $1 AND group_name <> '' ORDER BY group_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	groups := []string{}
	for rows.Next() {
		var g string
		if err = rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return groups, nil
}

// PatientStats считает общее число карточек, избранные и распределение по группам.
func (s *Storage) PatientStats(ctx context.Context, userID string) (*models.PatientStats, error) {
	const op = "storage.PatientStats"

	stats := &models.PatientStats{Groups: []models.GroupCount{}}
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_favorite)
		FROM patients WHERE user_id = $1`, userID).Scan(&stats.TotalPatients, &stats.FavoritePatients)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT group_name, COUNT(*) AS cnt FROM patients
		WHERE user_id = $1 GROUP BY group_name ORDER BY cnt DESC, group_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var gc models.GroupCount
		if err = rows.Scan(&gc.Group, &gc.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stats.Groups = append(stats.Groups, gc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// PatientsChangedSince возвращает карточки, созданные после since, и карточки,
// созданные раньше, но измененные после since.
func (s *Storage) PatientsChangedSince(ctx context.Context, userID string, since time.Time) (created, updated []models.Patient, err error) {
	const op = "storage.PatientsChangedSince"

	created, err = s.queryPatients(ctx, op, `SELECT `+patientColumns+` FROM patients
		WHERE user_id = $1 AND created_at > $2 ORDER BY created_at`, userID, since)
	if err != nil {
		return nil, nil, err
	}
	updated, err = s.queryPatients(ctx, op, `SELECT `+patientColumns+` FROM patients
		WHERE user_id = $1 AND created_at <= $2 AND updated_at > $2 ORDER BY updated_at`, userID, since)
	if err != nil {
		return nil, nil, err
	}
	return created, updated, nil
}

// PatientExists сообщает, принадлежит ли карточка пользователю.
func (s *Storage) PatientExists(ctx context.Context, userID, patientID string) (bool, error) {
	const op = "storage.PatientExists"

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1 AND user_id = $2)`,
		patientID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
